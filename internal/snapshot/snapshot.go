package snapshot

// PaymentSnapshot is the validated, strongly typed form of the payment
// snapshot blob stored on a payment code. Nothing downstream of Normalize
// ever touches the raw JSON again.
//
// All amounts are whole yen; points are whole points. ChargeAmount is the
// snapshot's totalAmount taken verbatim: it is already net of points and
// inclusive of tax, and is never recomputed from subtotal/tax at redemption
// time. PointsEarned is the one derived field, recomputed at settlement.
type PaymentSnapshot struct {
	StoreID      string
	StoreName    string
	Items        []LineItem
	Subtotal     int
	Tax          int
	PointsUsed   int
	PointsEarned int
	ChargeAmount int
}

// LineItem is one ordered line of the sale as agreed at quote time.
type LineItem struct {
	Name      string
	UnitPrice int
	Quantity  int
	LineTotal int
}
