package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/finplan/internal/importer"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse_CGDConta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
NIF;"=""123"""

Dados da conta
Conta;0000 - EUR - Conta Extracto
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	txs, err := importer.Parse(strings.NewReader(csv), importer.Presets["cgd"]...)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2026, 1, 30), txs[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", txs[0].Merchant)
	assert.Equal(t, "INSTITUTO GESTAO FINA", txs[0].Name)
	assert.True(t, amount("588.74").Equal(txs[0].Amount), txs[0].Amount.String())

	assert.Equal(t, date(2026, 1, 9), txs[1].Date)
	assert.True(t, amount("-8608.52").Equal(txs[1].Amount), txs[1].Amount.String())
}

func TestParse_CGDExtrato(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026 : 0829015676030
Intervalo de ;01-02-2026 a 14-02-2026
Saldo contabilístico final ;41.393,66

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	txs, err := importer.Parse(strings.NewReader(csv), importer.Presets["cgd"]...)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "PAGAMENTO TSU", txs[0].Merchant)
	assert.True(t, amount("608.13").Equal(txs[0].Amount))
	assert.True(t, amount("-4324.06").Equal(txs[1].Amount))
}

func TestParse_CGDCartao(t *testing.T) {
	csv := `Consultar saldos e movimentos de cartões - 15-02-2026
Desde ;15/12/2025

Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
31-12-2025 ;29-12-2025 ;REFUND AMAZON ; ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	txs, err := importer.Parse(strings.NewReader(csv), importer.Presets["cgd"]...)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2025, 12, 16), txs[0].Date)
	assert.Equal(t, "PA GONDOMAR         GONDOMAR", txs[0].Merchant)
	assert.True(t, amount("64").Equal(txs[0].Amount))

	assert.True(t, amount("-25").Equal(txs[1].Amount))
}

func TestParse_Generic(t *testing.T) {
	csv := "Date,Description,Amount\n2026-03-02,Corner Grocer,\"-1,204.50\"\n2026-03-03,Payroll,3000.00\n2026-03-04,Zero,0.00\n"

	txs, err := importer.Parse(strings.NewReader(csv), importer.Presets["generic"]...)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.True(t, amount("1204.5").Equal(txs[0].Amount))
	assert.True(t, amount("-3000").Equal(txs[1].Amount))
}

func TestParse_CustomLayout(t *testing.T) {
	type testCase struct {
		name   string
		layout importer.Layout
		csv    string
		want   []string
	}

	tests := []testCase{
		{
			name: "OutflowPositive",
			layout: importer.Layout{
				Name:            "card",
				Delimiter:       "|",
				DateCol:         "when",
				DateLayout:      "01/02/2006",
				MerchantCol:     "payee",
				NameCol:         "memo",
				AmountCol:       "value",
				OutflowPositive: true,
			},
			csv:  "When|Payee|Memo|Value\n03/14/2026|Cafe|pi day|4.20\n03/15/2026|Refund||-10\n",
			want: []string{"4.2", "-10"},
		},
		{
			name: "SplitColumns",
			layout: importer.Layout{
				Name:        "split",
				DateCol:     "Date",
				MerchantCol: "Payee",
				DebitCol:    "Out",
				CreditCol:   "In",
			},
			csv:  "Date,Payee,Out,In\n2026-03-14,Cafe,4.20,\n2026-03-15,Salary,,100\n",
			want: []string{"4.2", "-100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := importer.Parse(strings.NewReader(tt.csv), tt.layout)
			require.NoError(t, err)
			require.Len(t, txs, len(tt.want))

			for i, w := range tt.want {
				assert.True(t, amount(w).Equal(txs[i].Amount), "row %d: got %s", i, txs[i].Amount)
			}
		})
	}
}

func TestParse_NameColumn(t *testing.T) {
	layout := importer.Layout{Name: "named", DateCol: "Date", MerchantCol: "Payee", NameCol: "Memo", AmountCol: "Amount"}

	txs, err := importer.Parse(strings.NewReader("Date,Payee,Memo,Amount\n2026-03-14,Cafe,Flat white,-4.20\n"), layout)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "Cafe", txs[0].Merchant)
	assert.Equal(t, "Flat white", txs[0].Name)
}

func TestParse_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	txs, err := importer.Parse(bytes.NewReader(latin1Bytes), importer.Presets["cgd"]...)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "CAFÉ CENTRAL", txs[0].Merchant)
}

func TestParse_Errors(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantErr string
	}

	tests := []testCase{
		{name: "EmptyFile", csv: "", wantErr: "no matching csv layout"},
		{name: "UnknownColumns", csv: "a;b;c\n1;2;3\n", wantErr: "no matching csv layout"},
		{name: "MissingMerchant", csv: "Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n", wantErr: "row 2: missing merchant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.Parse(strings.NewReader(tt.csv), importer.Presets["cgd"]...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	txs, err := importer.Parse(strings.NewReader(`Data mov.;Data-valor;Descrição;Montante`), importer.Presets["cgd"]...)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
