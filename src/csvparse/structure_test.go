package csvparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectStructureHeaderAfterPreamble(t *testing.T) {
	content := "Compte courant 12345678;;;;1000,00\n" +
		"\n" +
		"Date operation;Libelle court;Type;Categorie;Montant\n" +
		"2021-01-02;Achat;Debit;;-12,34\n" +
		"2021-01-03;Salaire;Credit;;2000,00\n"

	st := DetectStructure(content)

	assert.Equal(t, ';', int32(st.Delimiter))
	assert.Equal(t, 2, st.HeaderIndex)
	assert.Equal(t, 3, st.DataIndex)
	assert.Equal(t, []string{"Date operation", "Libelle court", "Type", "Categorie", "Montant"}, st.Columns)
}

func TestDetectStructureNoHeader(t *testing.T) {
	content := "Compte courant 12345678 2021-01-01\n" +
		"2021-01-02;Debit;CB;Achat;-12,34\n"

	st := DetectStructure(content)

	assert.Equal(t, ';', int32(st.Delimiter))
	assert.Equal(t, -1, st.HeaderIndex)
	assert.Equal(t, 0, st.DataIndex)
	assert.Empty(t, st.Columns)
}

func TestDetectStructureCommaDelimited(t *testing.T) {
	content := "Date,Libelle,Montant\n" +
		"2021-01-02,Achat,-12.34\n"

	st := DetectStructure(content)

	assert.Equal(t, ',', int32(st.Delimiter))
	assert.Equal(t, 0, st.HeaderIndex)
	assert.Equal(t, 1, st.DataIndex)
	assert.Equal(t, []string{"Date", "Libelle", "Montant"}, st.Columns)
}

func TestDetectStructureHeaderWithoutKeywords(t *testing.T) {
	content := "Jour;Nom;Valeur\n" +
		"2021-01-02;Achat;-12,34\n" +
		"2021-01-03;Salaire;2000,00\n"

	st := DetectStructure(content)

	assert.Equal(t, 0, st.HeaderIndex)
	assert.Equal(t, 1, st.DataIndex)
	assert.Equal(t, []string{"Jour", "Nom", "Valeur"}, st.Columns)
}
