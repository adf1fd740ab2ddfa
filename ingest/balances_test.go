package ingest

import (
	"strings"
	"testing"

	"github.com/etnz/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryStrings(entries []reconcile.BalanceEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name+"="+e.Balance.String())
	}
	return out
}

func TestReadBalances(t *testing.T) {
	t.Run("xlsx", func(t *testing.T) {
		buf := xlsx(t,
			[]any{"Razón Social", "CUIT", "Saldo"},
			[]any{"Acme S.A.", "30-1", 1500.5},
			[]any{"", "30-2", 12},
			[]any{"Beta SRL", "30-3", -200},
		)
		got, err := ReadBalances(buf, XLSX)
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme S.A.=1500.5", "Beta SRL=-200"}, entryStrings(got))
	})
	t.Run("csv", func(t *testing.T) {
		got, err := ReadBalances(strings.NewReader("nombre;saldo\nAcme;1.500,50\nBeta;(200,00)\n"), CSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme=1500.5", "Beta=-200"}, entryStrings(got))
	})
	t.Run("missing balance column", func(t *testing.T) {
		_, err := ReadBalances(strings.NewReader("nombre,cuit\nAcme,30\n"), CSV)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
	t.Run("invalid balance", func(t *testing.T) {
		_, err := ReadBalances(strings.NewReader("nombre,saldo\nAcme,n/a\n"), CSV)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
	})
}

func TestReadBalancesJSON(t *testing.T) {
	t.Run("default paths", func(t *testing.T) {
		doc := `{"saldos": [
			{"razonSocial": "ACME SA", "saldo": 1500.50},
			{"razonSocial": "Beta SRL", "saldo": "-200,00"},
			{"saldo": 3}
		]}`
		got, err := ReadBalancesJSON(strings.NewReader(doc), DefaultJSONPaths)
		require.NoError(t, err)
		assert.Equal(t, []string{"ACME SA=1500.5", "Beta SRL=-200"}, entryStrings(got))
	})
	t.Run("custom paths", func(t *testing.T) {
		doc := `{"data": {"accounts": [{"party": {"name": "Gamma"}, "closing": 42}]}}`
		got, err := ReadBalancesJSON(strings.NewReader(doc), JSONPaths{
			Rows:    "$.data.accounts[*]",
			Name:    "$.party.name",
			Balance: "$.closing",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Gamma=42"}, entryStrings(got))
	})
	t.Run("rows is not a list", func(t *testing.T) {
		_, err := ReadBalancesJSON(strings.NewReader(`{"saldos": 3}`), JSONPaths{Rows: "$.saldos", Name: "$.n", Balance: "$.b"})
		assert.Error(t, err)
	})
	t.Run("invalid json", func(t *testing.T) {
		_, err := ReadBalancesJSON(strings.NewReader(`{`), DefaultJSONPaths)
		assert.Error(t, err)
	})
}
