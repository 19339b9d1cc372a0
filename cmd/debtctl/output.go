package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"debttrack/internal/analytics"
	"debttrack/internal/core"
	"debttrack/internal/projection"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(v float64) string { return core.FormatAmount(v) }

func printProjection(w io.Writer, p projection.PayoffProjection, withSchedule bool) error {
	if p.Error != "" {
		fmt.Fprintf(w, "error: %s\n", p.Error)
	}
	fmt.Fprintf(w, "months:         %d\n", p.Months)
	fmt.Fprintf(w, "total interest: %s\n", money(p.TotalInterest))
	fmt.Fprintf(w, "final balance:  %s\n", money(p.FinalBalance))
	if !withSchedule || len(p.Schedule) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	t := newTable(w)
	fmt.Fprintln(t, "MONTH\tPAYMENT\tINTEREST\tPRINCIPAL\tBALANCE")
	for _, m := range p.Schedule {
		fmt.Fprintf(t, "%d\t%s\t%s\t%s\t%s\n", m.Month, money(m.PaymentAmount), money(m.InterestCharged), money(m.PrincipalPaid), money(m.Balance))
	}
	return t.Flush()
}

func printScenarios(w io.Writer, scenarios []projection.Scenario) error {
	if len(scenarios) == 0 {
		fmt.Fprintln(w, "No scenarios: the account has no minimum payment and no recent payments.")
		return nil
	}
	t := newTable(w)
	fmt.Fprintln(t, "SCENARIO\tPAYMENT\tMONTHS\tINTEREST\tTOTAL PAID\tNOTE")
	for _, s := range scenarios {
		fmt.Fprintf(t, "%s\t%s\t%d\t%s\t%s\t%s\n", s.Name, money(s.MonthlyPayment), s.Months, money(s.TotalInterest), money(s.TotalPaid), s.Error)
	}
	return t.Flush()
}

func describeOutlook(o analytics.PayoffOutlook) string {
	if !o.Available() {
		return "unavailable (" + o.Reason + ")"
	}
	return fmt.Sprintf("%s in %d months at %s/month", o.Date.Format("January 2006"), o.Months, money(o.MonthlyPayment))
}
