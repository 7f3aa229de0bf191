package entity

import "math"

// Colunas conhecidas da tabela de compras.
const (
	ColNome           = "nome"
	ColValorCompra    = "valor_compra"
	ColDataCompra     = "data_compra"
	ColAno            = "ano"
	ColMes            = "mes"
	ColCategoriaValor = "categoria_valor"
)

// RequiredColumns são as colunas que precisam existir na entrada, após a normalização.
var RequiredColumns = []string{ColValorCompra, ColNome, ColDataCompra}

// Rótulos da categoria de valor.
const (
	CategoriaBaixo = "Baixo"
	CategoriaMedio = "Médio"
	CategoriaAlto  = "Alto"
)

// CategoryBin é um intervalo semiaberto (Lower, Upper].
type CategoryBin struct {
	Label string
	Lower float64
	Upper float64
}

// CategoryBins define as faixas de categoria_valor: (0,100], (100,200], (200,+Inf).
var CategoryBins = []CategoryBin{
	{Label: CategoriaBaixo, Lower: 0, Upper: 100},
	{Label: CategoriaMedio, Lower: 100, Upper: 200},
	{Label: CategoriaAlto, Lower: 200, Upper: math.Inf(1)},
}

// CategoryLevels retorna os rótulos na ordem das faixas.
func CategoryLevels() []string {
	levels := make([]string, len(CategoryBins))
	for i, b := range CategoryBins {
		levels[i] = b.Label
	}
	return levels
}

// Categorize devolve o rótulo da faixa que contém v. Valores <= 0 ficam fora de
// todas as faixas e retornam ok=false.
func Categorize(v float64) (string, bool) {
	if math.IsNaN(v) {
		return "", false
	}
	for _, b := range CategoryBins {
		if v > b.Lower && v <= b.Upper {
			return b.Label, true
		}
	}
	return "", false
}
