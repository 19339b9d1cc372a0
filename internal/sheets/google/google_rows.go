package google

import (
	"fmt"
	"strings"

	ports "debttrack/internal/sheets"
)

const maxTitleLen = 100

var titleReplacer = strings.NewReplacer("[", "(", "]", ")", "*", "", "?", "", "/", "-", "\\", "-", ":", "-", "'", "")

// sheetTitle is unique per account and generation time and uses only
// characters Sheets accepts in a tab name.
func sheetTitle(e ports.ScheduleExport) string {
	name := strings.TrimSpace(titleReplacer.Replace(e.Account.Name))
	if name == "" {
		name = fmt.Sprintf("Account %d", e.Account.ID)
	}
	title := fmt.Sprintf("%s %s", name, e.GeneratedAt.UTC().Format("2006-01-02 15.04.05"))
	if len(title) > maxTitleLen {
		title = title[len(title)-maxTitleLen:]
	}
	return title
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// buildRows lays out the summary table, then one schedule block per
// scenario separated by a blank row.
func buildRows(e ports.ScheduleExport) [][]interface{} {
	rows := [][]interface{}{
		{"Account", e.Account.Name},
		{"Balance", money(e.Account.Balance)},
		{"Annual Rate %", fmt.Sprintf("%.2f", e.Account.InterestRate)},
		{},
		{"Scenario", "Monthly Payment", "Months", "Total Interest", "Total Paid", "Note"},
	}
	for _, s := range e.Scenarios {
		rows = append(rows, []interface{}{
			s.Name, money(s.MonthlyPayment), s.Months, money(s.TotalInterest), money(s.TotalPaid), s.Error,
		})
	}
	for _, s := range e.Scenarios {
		if len(s.Schedule) == 0 {
			continue
		}
		rows = append(rows, []interface{}{}, []interface{}{s.Name}, []interface{}{"Month", "Balance", "Interest", "Payment", "Principal"})
		for _, m := range s.Schedule {
			rows = append(rows, []interface{}{
				m.Month, money(m.Balance), money(m.InterestCharged), money(m.PaymentAmount), money(m.PrincipalPaid),
			})
		}
	}
	return rows
}
