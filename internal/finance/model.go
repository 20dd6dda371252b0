package finance

// Period selects the reporting window for revenue data.
type Period string

const (
	PeriodCurrentMonth Period = "current_month"
	PeriodLastMonth    Period = "last_month"
	PeriodLast6Months  Period = "last_6_months"
	PeriodLastYear     Period = "last_year"
)

func ValidPeriod(p Period) bool {
	switch p {
	case PeriodCurrentMonth, PeriodLastMonth, PeriodLast6Months, PeriodLastYear:
		return true
	}
	return false
}

// Summary aggregates the transactions of a period.
type Summary struct {
	TotalRecords   int     `json:"totalRecords"`
	AverageRevenue float64 `json:"averageRevenue"`
}

// PlanRevenue names the plan that earned the most in the period.
type PlanRevenue struct {
	Plan    string  `json:"plan"`
	Revenue float64 `json:"revenue"`
}

// ChartPoint is one bucket of the revenue chart.
type ChartPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// TableRow is one payment as rendered in the transactions table.
type TableRow struct {
	ID           string  `json:"id"`
	MemberName   string  `json:"memberName"`
	MemberRollNo string  `json:"memberRollNo"`
	Plan         string  `json:"plan"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Description  string  `json:"description"`
}

// Data is the full finance report for a period.
type Data struct {
	TotalRevenue       float64      `json:"totalRevenue"`
	Summary            Summary      `json:"summary"`
	HighestRevenuePlan PlanRevenue  `json:"highestRevenuePlan"`
	ChartData          []ChartPoint `json:"chartData"`
	TableData          []TableRow   `json:"tableData"`
}
