package opra_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/opra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTaxonomy(t *testing.T) *opra.Taxonomy {
	t.Helper()

	tax, err := opra.NewTaxonomy([]opra.Category{
		{
			ID:             "board-admin",
			Name:           "Board Administrative Records",
			Description:    "Meeting minutes, agendas, recordings, training materials, correspondence, annual reports",
			Required:       true,
			DefaultRecords: []string{"All meeting minutes from the past 2 years"},
		},
		{
			ID:          "tenant-complaints",
			Name:        "Tenant Complaint Records",
			Description: "Complaint forms, documentation, landlord responses, determinations, appeals",
			Keywords:    []string{"complaint", "appeal", "dispute"},
		},
		{
			ID:          "general-admin",
			Name:        "General Administrative Records",
			Description: "Correspondence, emails, inquiries, memoranda, legal opinions, tracking systems",
			Required:    true,
		},
	})
	require.NoError(t, err)
	return tax
}

func testRequestData() opra.RequestData {
	return opra.RequestData{
		Date:         time.Date(2026, time.March, 5, 15, 4, 0, 0, time.UTC),
		Municipality: &opra.Municipality{Name: "Hoboken", County: "Hudson", State: "NJ"},
		Ordinance:    &opra.Ordinance{Title: "Rent Leveling", Code: "Chapter 155"},
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("renders selected category with summary bullets in order", func(t *testing.T) {
		t.Parallel()

		data := testRequestData()
		data.SelectedCategories = []string{"board-admin"}
		data.RecordsSummary = opra.RecordsSummary{
			"board-admin": {"Minutes of every board meeting", "Board training materials", "Annual reports"},
		}

		text := opra.Compose(testTaxonomy(t), data)

		assert.Contains(t, text, "1. **Board Administrative Records**\n\n"+
			"   • Minutes of every board meeting\n"+
			"   • Board training materials\n"+
			"   • Annual reports\n\n")
	})

	t.Run("is byte-identical for identical input", func(t *testing.T) {
		t.Parallel()

		data := testRequestData()
		data.SelectedCategories = []string{"board-admin", "tenant-complaints"}
		data.RecordsSummary = opra.RecordsSummary{"tenant-complaints": {"Complaint log"}}
		tax := testTaxonomy(t)

		assert.Equal(t, opra.Compose(tax, data), opra.Compose(tax, data))
	})

	t.Run("header falls back to the municipal clerk", func(t *testing.T) {
		t.Parallel()

		text := opra.Compose(testTaxonomy(t), testRequestData())

		assert.True(t, strings.HasPrefix(text, "March 5, 2026\n\nMunicipal Clerk\nOPRA Custodian\nHoboken Municipality\nHoboken, NJ\n\nVia Email\n\n"))
		assert.Contains(t, text, "Re: OPRA Request - Rent Control Ordinance Records\n\nDear Municipal Clerk:\n\n")
	})

	t.Run("header uses custodian details", func(t *testing.T) {
		t.Parallel()

		data := testRequestData()
		data.Custodian = &opra.Custodian{
			Name:    "Jane Doe",
			Title:   "Municipal Clerk / OPRA Custodian",
			Email:   "clerk@hobokennj.gov",
			Address: "94 Washington St, Hoboken, NJ 07030",
		}

		text := opra.Compose(testTaxonomy(t), data)

		assert.Contains(t, text, "Jane Doe\nMunicipal Clerk / OPRA Custodian\nHoboken Municipality\n94 Washington St, Hoboken, NJ 07030\n\nVia Email: clerk@hobokennj.gov\n\n")
		assert.Contains(t, text, "Dear Jane Doe:")
	})

	t.Run("introduction cites OPRA and the ordinance code", func(t *testing.T) {
		t.Parallel()

		text := opra.Compose(testTaxonomy(t), testRequestData())

		assert.Contains(t, text, "N.J.S.A. 47:1A-1 et seq.")
		assert.Contains(t, text, "relating to Hoboken's Rent Control Ordinance (Chapter 155):\n\n")
	})

	t.Run("category without summary gets a generic bullet", func(t *testing.T) {
		t.Parallel()

		data := testRequestData()
		data.SelectedCategories = []string{"tenant-complaints"}

		text := opra.Compose(testTaxonomy(t), data)

		assert.Contains(t, text, "1. **Tenant Complaint Records**\n\n   • All records related to complaint forms, documentation, landlord responses, determinations, appeals\n\n")
	})

	t.Run("unknown categories are skipped and numbering stays contiguous", func(t *testing.T) {
		t.Parallel()

		data := testRequestData()
		data.SelectedCategories = []string{"board-admin", "no-such-category", "general-admin"}

		text := opra.Compose(testTaxonomy(t), data)

		assert.Contains(t, text, "1. **Board Administrative Records**")
		assert.Contains(t, text, "2. **General Administrative Records**")
		assert.NotContains(t, text, "3. **")
	})

	t.Run("ends with the closing boilerplate", func(t *testing.T) {
		t.Parallel()

		text := opra.Compose(testTaxonomy(t), testRequestData())

		assert.Contains(t, text, "**Time Period**: Please provide records from the past three (3) years")
		assert.Contains(t, text, "N.J.S.A. 47:1A-5(g)")
		assert.Contains(t, text, "seven (7) business days pursuant to N.J.S.A. 47:1A-5(i)")
		assert.True(t, strings.HasSuffix(text, "Sincerely,\n\n[Requestor Name]\n[Contact Information]"))
	})
}

func TestComposeCustomized(t *testing.T) {
	t.Parallel()

	t.Run("inserts provisions before the closing", func(t *testing.T) {
		t.Parallel()

		data := testRequestData()
		data.SelectedCategories = []string{"board-admin"}

		text := opra.ComposeCustomized(testTaxonomy(t), data, []string{"Rent board hearing decisions", "Capital improvement surcharge applications"})

		additional := strings.Index(text, "**Additional Records Based on Specific Ordinance Provisions**:\n\n1. Rent board hearing decisions\n2. Capital improvement surcharge applications\n\n")
		closing := strings.Index(text, "**Time Period**")
		require.NotEqual(t, -1, additional)
		assert.Less(t, additional, closing)
	})

	t.Run("no provisions leaves the text unchanged", func(t *testing.T) {
		t.Parallel()

		tax := testTaxonomy(t)
		data := testRequestData()

		assert.Equal(t, opra.Compose(tax, data), opra.ComposeCustomized(tax, data, nil))
	})
}

func TestBuildSections(t *testing.T) {
	t.Parallel()

	data := testRequestData()
	data.SelectedCategories = []string{"general-admin", "board-admin"}

	sections := opra.BuildSections(testTaxonomy(t), data)

	require.Len(t, sections, 4)
	assert.Equal(t, opra.SectionHeader, sections[0].Kind)
	assert.Equal(t, "general-admin", sections[1].CategoryID)
	assert.Equal(t, "board-admin", sections[2].CategoryID)
	assert.Equal(t, opra.SectionFooter, sections[3].Kind)
	for i := range sections {
		assert.NoError(t, sections[i].Validate())
	}
}

func TestRenderSections(t *testing.T) {
	t.Parallel()

	t.Run("numbers category and custom sections", func(t *testing.T) {
		t.Parallel()

		text := opra.RenderSections([]opra.RequestSection{
			{ID: "header", Kind: opra.SectionHeader, Content: "Intro:\n\n"},
			{ID: "c1", Kind: opra.SectionCategory, CategoryID: "board-admin", Title: "Board", Content: "   • Minutes\n"},
			{ID: "x1", Kind: opra.SectionCustom, Title: "Landlord Registrations", Content: "   • Registration statements"},
			{ID: "footer", Kind: opra.SectionFooter, Content: "Thanks."},
		})

		assert.Equal(t, "Intro:\n\n1. **Board**\n\n   • Minutes\n\n2. **Landlord Registrations**\n\n   • Registration statements\n\nThanks.", text)
	})

	t.Run("edited sections round-trip through BuildSections", func(t *testing.T) {
		t.Parallel()

		tax := testTaxonomy(t)
		data := testRequestData()
		data.SelectedCategories = []string{"board-admin"}

		assert.Equal(t, opra.Compose(tax, data), opra.RenderSections(opra.BuildSections(tax, data)))
	})
}
