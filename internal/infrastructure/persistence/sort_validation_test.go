package persistence

import (
	"sync"
	"testing"

	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                   "DESC",
		"asc":                "ASC",
		"  AsC ":             "ASC",
		"desc":               "DESC",
		"ascending":          "DESC",
		"ASC; DELETE orders": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		allowed map[string]bool
		want    string
	}{
		{"whitelisted order column", "approval_deadline", OrderSortFields, "approval_deadline"},
		{"trimmed", " total ", OrderSortFields, "total"},
		{"column of another table", "prep_minutes", OrderSortFields, "created_at"},
		{"case sensitive", "TOTAL", OrderSortFields, "created_at"},
		{"empty", "", DishSortFields, "created_at"},
		{"subquery", "price, (SELECT email FROM accounts)", DishSortFields, "created_at"},
		{"comment", "points--", LedgerSortFields, "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, tt.allowed, "created_at"))
		})
	}
}

func TestSortWhitelists_MatchModelColumns(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	cases := map[string]struct {
		model  any
		fields map[string]bool
	}{
		"accounts":      {&models.AccountModel{}, AccountSortFields},
		"dishes":        {&models.DishModel{}, DishSortFields},
		"orders":        {&models.OrderModel{}, OrderSortFields},
		"ledger":        {&models.LoyaltyEntryModel{}, LedgerSortFields},
		"notifications": {&models.NotificationModel{}, NotificationSortFields},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := schema.Parse(c.model, &sync.Map{}, db.NamingStrategy)
			require.NoError(t, err)
			for field := range c.fields {
				assert.NotNil(t, s.LookUpField(field), "%s has no column %s", name, field)
			}
		})
	}
}

func TestPageQuery(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	build := func(f shared.Filter) string {
		var rows []models.OrderModel
		stmt := pageQuery(db.Model(&models.OrderModel{}), f.Normalize(), OrderSortFields, "created_at").
			Find(&rows).Statement
		return db.Dialector.Explain(stmt.SQL.String(), stmt.Vars...)
	}

	sql := build(shared.Filter{Page: 3, PageSize: 10, OrderBy: "total", OrderDir: "asc"})
	assert.Contains(t, sql, "ORDER BY total ASC")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 20")

	sql = build(shared.Filter{OrderBy: "id; DROP TABLE orders"})
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.NotContains(t, sql, "DROP")
}
