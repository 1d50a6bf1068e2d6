package cache

// Cache tags. List-style tags are keyed per entity; the dashboard
// aggregates carry their own tags so entity writes can mark them stale.
const (
	TagCustomers        = "customers"
	TagOpportunities    = "opportunities"
	TagDeals            = "deals"
	TagDealsKanban      = "deals-kanban"
	TagTransactions     = "transactions"
	TagQuotes           = "quotes"
	TagTasks            = "tasks"
	TagNotifications    = "notifications"
	TagFinancialSummary = "financial-summary"
	TagSalesAnalytics   = "sales-analytics"
)

// tagsByTable maps a mutated table to every tag its writes make stale
var tagsByTable = map[string][]string{
	"customers":     {TagCustomers, TagSalesAnalytics},
	"opportunities": {TagOpportunities, TagSalesAnalytics},
	"deals":         {TagDeals, TagDealsKanban, TagSalesAnalytics},
	"transactions":  {TagTransactions, TagFinancialSummary},
	"quotes":        {TagQuotes},
	"tasks":         {TagTasks},
	"notifications": {TagNotifications},
}

// TagsForTable returns the tags invalidated by a write to table.
// Unknown tables have no dependent tags.
func TagsForTable(table string) []string {
	return tagsByTable[table]
}

// WatchedTables lists every table with registered cache dependencies
func WatchedTables() []string {
	tables := make([]string, 0, len(tagsByTable))
	for table := range tagsByTable {
		tables = append(tables, table)
	}
	return tables
}
