package normalize

import (
	"encoding/json"
	"testing"

	"gondolatrack/internal/models"
)

func TestOneAliases(t *testing.T) {
	cases := map[string]string{
		"canonical": `{"idGondola": 7, "idLoja": 2, "nome": "G1", "corredorSecao": "A1", "totalPosicoes": 12}`,
		"snake":     `{"id_gondola": 7, "id_loja": 2, "nome": "G1", "secao_corredor": "A1", "total_posicoes": 12}`,
		"envelope":  `{"data": {"id": 7, "idLoja": "2", "nome": "G1", "corredorSecao": "A1", "totalPosicoes": "12"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			g := One[models.Gondola](Decode([]byte(body)))
			if g.IDGondola != 7 || g.IDLoja != 2 || g.Nome != "G1" || g.TotalPosicoes != 12 {
				t.Fatalf("unexpected gondola: %+v", g)
			}
			if g.CorredorSecao == nil || *g.CorredorSecao != "A1" {
				t.Fatalf("corredorSecao = %v", g.CorredorSecao)
			}
			if g.Marca != nil || g.IDResponsavel != nil {
				t.Fatalf("absent optionals must stay nil: %+v", g)
			}
		})
	}
}

func TestManyShapes(t *testing.T) {
	bare := Many[models.Loja](Decode([]byte(`[{"idLoja":1,"nome":"A"},{"id_loja":2,"nome":"B"}]`)))
	wrapped := Many[models.Loja](Decode([]byte(`{"data":[{"id":1,"nome":"A"},{"id":2,"nome":"B"}]}`)))
	if len(bare) != 2 || len(wrapped) != 2 {
		t.Fatalf("len bare=%d wrapped=%d", len(bare), len(wrapped))
	}
	for i := range bare {
		if bare[i].IDLoja != wrapped[i].IDLoja || bare[i].Nome != wrapped[i].Nome {
			t.Fatalf("row %d differs: %+v vs %+v", i, bare[i], wrapped[i])
		}
	}
	if got := Many[models.Loja](Decode([]byte(`{"erro": true}`))); len(got) != 0 {
		t.Fatalf("non-list should map to empty list, got %d", len(got))
	}
}

func TestMalformedInput(t *testing.T) {
	for _, body := range []string{``, `not json`, `null`, `42`, `"x"`} {
		p := One[models.GondolaProduto](Decode([]byte(body)))
		if p.IDProduto != nil || p.EAN != "" || p.Minimo.String() != "0.000" {
			t.Fatalf("body %q: %+v", body, p)
		}
	}

	p := One[models.GondolaProduto](Decode([]byte(
		`{"idProduto": "abc", "EAN": "789", "DESCRICAO": "Arroz", "minimo": "x", "maximo": "12.5", "estoqueAtual": null}`)))
	if p.IDProduto != nil {
		t.Fatalf("non-numeric optional id should be nil, got %d", *p.IDProduto)
	}
	if p.EAN != "789" || p.Descricao != "Arroz" {
		t.Fatalf("legacy upper-case keys not probed: %+v", p)
	}
	if p.Minimo.String() != "0.000" || p.Maximo.String() != "12.500" || p.EstoqueAtual.String() != "0.000" {
		t.Fatalf("quantities: %s %s %s", p.Minimo, p.Maximo, p.EstoqueAtual)
	}
}

func TestIdempotence(t *testing.T) {
	raw := `{"data":{"id_abastecimento_item":"11","idAbastecimento":"3","id_subproduto":99,
		"ean":"789","estoqueLoja":"4","estoque_cd":2.5,"mediaDia":"0.333333","qtdSugerida":"6.000"}}`
	first := One[models.AbastecimentoItem](Decode([]byte(raw)))

	b, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	second := One[models.AbastecimentoItem](Decode(b))

	b2, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != string(b2) {
		t.Fatalf("not idempotent:\n%s\n%s", b, b2)
	}
	if first.IDSubproduto != "99" || first.EstoqueCd.String() != "2.500" {
		t.Fatalf("unexpected item: %+v", first)
	}
	if first.MediaDia.String() != "0.333333" {
		t.Fatalf("mediaDia lost precision: %s", first.MediaDia)
	}
}

func TestNestedList(t *testing.T) {
	c := One[models.Conferencia](Decode([]byte(
		`{"idConferencia": 5, "itens": [{"idProduto": 1, "qtdConferida": "3.000"}, {"ean": "789", "qtdConferida": 2}]}`)))
	if c.IDConferencia != 5 || len(c.Itens) != 2 {
		t.Fatalf("unexpected conferencia: %+v", c)
	}
	if c.Itens[0].IDProduto == nil || *c.Itens[0].IDProduto != 1 || c.Itens[1].EAN == nil {
		t.Fatalf("items: %+v", c.Itens)
	}
	if c.Itens[1].QtdConferida.String() != "2.000" {
		t.Fatalf("qtd = %s", c.Itens[1].QtdConferida)
	}
}

func TestFieldAndString(t *testing.T) {
	raw := Decode([]byte(`{"data": {"id_conferencia": 42}}`))
	if got := String(raw, "idConferencia", "id_conferencia"); got != "42" {
		t.Fatalf("String = %q", got)
	}
	if _, ok := Field(raw, "missing"); ok {
		t.Fatal("missing key reported present")
	}
}
