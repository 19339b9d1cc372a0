package core

// Effect is how a single transaction moves the debt. Exactly one of the
// two fields is non-zero for a non-zero amount.
type Effect struct {
	Reduction float64
	Increase  float64
}

// Effect is the one place transaction kinds are classified. PAYMENT and a
// negative ADJUSTMENT reduce the debt; CHARGE, INTEREST and a positive
// ADJUSTMENT increase it.
func (t Transaction) Effect() Effect {
	amount := t.Amount
	if amount < 0 {
		amount = -amount
	}
	switch t.Kind {
	case KindPayment:
		return Effect{Reduction: amount}
	case KindCharge, KindInterest:
		return Effect{Increase: amount}
	case KindAdjustment:
		if t.Amount < 0 {
			return Effect{Reduction: amount}
		}
		return Effect{Increase: amount}
	}
	return Effect{}
}

// BalanceDelta is the signed change the transaction applies to a balance.
func (t Transaction) BalanceDelta() float64 {
	e := t.Effect()
	return e.Increase - e.Reduction
}

// Movement aggregates effects over a set of transactions.
type Movement struct {
	Reduction float64
	Increase  float64
	Payments  float64 // PAYMENT only
	Interest  float64 // INTEREST only
	Charges   float64 // CHARGE only
	Fees      float64 // positive ADJUSTMENT legs
	Count     int
}

// Net is reduction minus increase; negative means the debt grew.
func (m Movement) Net() float64 {
	return m.Reduction - m.Increase
}

func Summarize(txs []Transaction) Movement {
	var m Movement
	for _, t := range txs {
		m.Add(t)
	}
	return m
}

func (m *Movement) Add(t Transaction) {
	e := t.Effect()
	m.Reduction += e.Reduction
	m.Increase += e.Increase
	m.Count++
	switch t.Kind {
	case KindPayment:
		m.Payments += e.Reduction
	case KindInterest:
		m.Interest += e.Increase
	case KindCharge:
		m.Charges += e.Increase
	case KindAdjustment:
		m.Fees += e.Increase
	}
}
