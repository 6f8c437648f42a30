// Package export renders batches and stock counts as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"

	"gondolatrack/internal/models"

	"github.com/xuri/excelize/v2"
)

const MIMEXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}
	return &sheet{f: f, name: name, row: 1}, nil
}

func (s *sheet) append(values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.name, cell, &values); err != nil {
		return err
	}
	s.row++
	return nil
}

// header writes a bold, shaded row.
func (s *sheet) header(titles ...string) error {
	style, err := s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	if err != nil {
		return err
	}
	row := make([]any, len(titles))
	for i, t := range titles {
		row[i] = t
	}
	first, _ := excelize.CoordinatesToCellName(1, s.row)
	last, _ := excelize.CoordinatesToCellName(len(titles), s.row)
	if err := s.append(row...); err != nil {
		return err
	}
	if err := s.f.SetCellStyle(s.name, first, last, style); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(titles))
	return s.f.SetColWidth(s.name, "A", lastCol, 16)
}

func (s *sheet) bytes() (*bytes.Buffer, error) {
	defer s.f.Close()
	return s.f.WriteToBuffer()
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Abastecimento writes one row per item. QtdSelecionada must already carry
// the value to print.
func Abastecimento(ab models.Abastecimento, itens []models.AbastecimentoItem) (*bytes.Buffer, error) {
	s, err := newSheet("Abastecimento")
	if err != nil {
		return nil, err
	}
	if err := s.append("Abastecimento", ab.IDAbastecimento, "Loja", ab.IDLoja, "Status", ab.Status, "Data base", ab.DtBase); err != nil {
		return nil, err
	}
	s.row++
	if err := s.header("Subproduto", "EAN", "Descrição", "Estoque loja", "Estoque CD",
		"Vendido no período", "Média dia", "Estoque alvo", "Qtd sugerida", "Qtd selecionada"); err != nil {
		return nil, err
	}
	for _, it := range itens {
		err := s.append(
			it.IDSubproduto,
			str(it.EAN),
			str(it.Descricao),
			it.EstoqueLoja.InexactFloat64(),
			it.EstoqueCd.InexactFloat64(),
			it.TotalVendidoPeriodo.InexactFloat64(),
			it.MediaDia.InexactFloat64(),
			it.EstoqueAlvo.InexactFloat64(),
			it.QtdSugerida.InexactFloat64(),
			it.QtdSelecionada.InexactFloat64(),
		)
		if err != nil {
			return nil, fmt.Errorf("export abastecimento %s: %w", ab.IDAbastecimento, err)
		}
	}
	return s.bytes()
}

// Conferencia writes a printed stock count of one gondola.
func Conferencia(g models.Gondola, conf models.Conferencia) (*bytes.Buffer, error) {
	s, err := newSheet("Conferência")
	if err != nil {
		return nil, err
	}
	usuario := conf.Usuario
	if conf.Nome != nil && *conf.Nome != "" {
		usuario = *conf.Nome
	}
	meta := [][]any{
		{"Gôndola", g.Nome},
		{"Conferência", conf.IDConferencia},
		{"Data", conf.CriadoEm},
		{"Usuário", usuario},
	}
	for _, m := range meta {
		if err := s.append(m...); err != nil {
			return nil, err
		}
	}
	s.row++
	if err := s.header("ID produto", "EAN", "Descrição", "Qtd conferida"); err != nil {
		return nil, err
	}
	for _, it := range conf.Itens {
		var id any = ""
		if it.IDProduto != nil {
			id = *it.IDProduto
		}
		if err := s.append(id, str(it.EAN), str(it.Descricao), it.QtdConferida.InexactFloat64()); err != nil {
			return nil, fmt.Errorf("export conferência %d: %w", conf.IDConferencia, err)
		}
	}
	return s.bytes()
}
