// pattern: Functional Core

package records

// Option describes one status value for display and for faceted filters.
type Option struct {
	Value string
	Label string
	Icon  string
}

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationExpiring  ReservationStatus = "expiring"
	ReservationConverted ReservationStatus = "converted"
	ReservationCancelled ReservationStatus = "cancelled"
)

var reservationStatuses = []Option{
	{Value: string(ReservationActive), Label: "Active", Icon: "●"},
	{Value: string(ReservationExpiring), Label: "Expiring", Icon: "◐"},
	{Value: string(ReservationConverted), Label: "Converted", Icon: "✔"},
	{Value: string(ReservationCancelled), Label: "Cancelled", Icon: "✕"},
}

type ContractStage string

const (
	StageDrafting   ContractStage = "drafting"
	StageReview     ContractStage = "legal_review"
	StageSignatures ContractStage = "signatures"
	StageNotary     ContractStage = "notary"
)

var contractStages = []Option{
	{Value: string(StageDrafting), Label: "Drafting", Icon: "✎"},
	{Value: string(StageReview), Label: "Legal review", Icon: "⚖"},
	{Value: string(StageSignatures), Label: "Signatures", Icon: "✍"},
	{Value: string(StageNotary), Label: "Notary", Icon: "§"},
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentRefunded PaymentStatus = "refunded"
)

var paymentStatuses = []Option{
	{Value: string(PaymentPending), Label: "Pending", Icon: "○"},
	{Value: string(PaymentPaid), Label: "Paid", Icon: "✔"},
	{Value: string(PaymentOverdue), Label: "Overdue", Icon: "!"},
	{Value: string(PaymentRefunded), Label: "Refunded", Icon: "↺"},
}

type PaymentMethod string

const (
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
	MethodCheck    PaymentMethod = "check"
	MethodCash     PaymentMethod = "cash"
)

var paymentMethods = []Option{
	{Value: string(MethodTransfer), Label: "Bank transfer"},
	{Value: string(MethodCard), Label: "Card"},
	{Value: string(MethodCheck), Label: "Check"},
	{Value: string(MethodCash), Label: "Cash"},
}

type CreditStatus string

const (
	CreditSubmitted CreditStatus = "submitted"
	CreditAnalysis  CreditStatus = "analysis"
	CreditApproved  CreditStatus = "approved"
	CreditRejected  CreditStatus = "rejected"
	CreditDisbursed CreditStatus = "disbursed"
)

var creditStatuses = []Option{
	{Value: string(CreditSubmitted), Label: "Submitted", Icon: "→"},
	{Value: string(CreditAnalysis), Label: "In analysis", Icon: "…"},
	{Value: string(CreditApproved), Label: "Approved", Icon: "✔"},
	{Value: string(CreditRejected), Label: "Rejected", Icon: "✕"},
	{Value: string(CreditDisbursed), Label: "Disbursed", Icon: "$"},
}

func (s ReservationStatus) String() string { return label(reservationStatuses, string(s)) }
func (s ContractStage) String() string     { return label(contractStages, string(s)) }
func (s PaymentStatus) String() string     { return label(paymentStatuses, string(s)) }
func (m PaymentMethod) String() string     { return label(paymentMethods, string(m)) }
func (s CreditStatus) String() string      { return label(creditStatuses, string(s)) }

func (s ReservationStatus) Icon() string { return icon(reservationStatuses, string(s)) }
func (s ContractStage) Icon() string     { return icon(contractStages, string(s)) }
func (s PaymentStatus) Icon() string     { return icon(paymentStatuses, string(s)) }
func (s CreditStatus) Icon() string      { return icon(creditStatuses, string(s)) }

func ReservationStatuses() []Option { return clone(reservationStatuses) }
func ContractStages() []Option      { return clone(contractStages) }
func PaymentStatuses() []Option     { return clone(paymentStatuses) }
func PaymentMethods() []Option      { return clone(paymentMethods) }
func CreditStatuses() []Option      { return clone(creditStatuses) }

// label falls back to the raw value so unknown statuses from a newer
// backend still render.
func label(opts []Option, v string) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

func icon(opts []Option, v string) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Icon
		}
	}
	return "?"
}

func clone(opts []Option) []Option {
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}
