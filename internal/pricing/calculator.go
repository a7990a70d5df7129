package pricing

import (
	"fmt"

	"mise/pkg/model"
)

// StorageItem pairs a storage listing with the whole-day length of the
// requested range (end date exclusive).
type StorageItem struct {
	Listing *model.StorageListing
	Days    int
}

// Input is everything a quote needs. The calculator does no I/O: callers
// resolve listings and durations first.
type Input struct {
	Kitchen   *model.KitchenListing
	Minutes   int
	Storage   []StorageItem
	Equipment []*model.EquipmentListing
}

// Calculator produces itemized price breakdowns and ledger splits. All
// arithmetic is integer cents with half-up rounding; quoting the same input
// twice always yields identical output.
type Calculator struct {
	serviceFeeBP      int64
	platformFeeBP     int64
	processorFeeBP    int64
	processorFeeFixed int64
	currency          string
}

func NewCalculator(serviceFeeBP, platformFeeBP, processorFeeBP, processorFeeFixed int64, currency string) *Calculator {
	return &Calculator{
		serviceFeeBP:      serviceFeeBP,
		platformFeeBP:     platformFeeBP,
		processorFeeBP:    processorFeeBP,
		processorFeeFixed: processorFeeFixed,
		currency:          currency,
	}
}

// Quote itemizes one booking bundle. Each line carries its own service fee;
// equipment damage deposits ride outside the fee base. The breakdown total is
// the sum of the line totals, not an independently rounded figure.
func (c *Calculator) Quote(in Input) model.PriceBreakdown {
	bd := model.PriceBreakdown{Currency: c.currency}

	if in.Kitchen != nil && in.Minutes > 0 {
		base := model.HourlyCharge(in.Kitchen.HourlyRateCents, in.Minutes)
		line := model.PriceLine{
			Label:     fmt.Sprintf("Kitchen: %s", in.Kitchen.Name),
			ListingID: in.Kitchen.ID,
			BaseCents: base,
			FeeCents:  base.ApplyBasisPoints(c.serviceFeeBP),
		}
		bd.Lines = append(bd.Lines, line)
		bd.KitchenSubtotal += line.BaseCents
		bd.ServiceFees += line.FeeCents
	}

	for _, item := range in.Storage {
		periods := model.CeilPeriods(item.Days, item.Listing.PeriodDays)
		base := item.Listing.PeriodRateCents * model.Cents(periods)
		line := model.PriceLine{
			Label:     fmt.Sprintf("Storage: %s (%d days)", item.Listing.Name, item.Days),
			ListingID: item.Listing.ID,
			BaseCents: base,
			FeeCents:  base.ApplyBasisPoints(c.serviceFeeBP),
		}
		bd.Lines = append(bd.Lines, line)
		bd.StorageSubtotal += line.BaseCents
		bd.ServiceFees += line.FeeCents
	}

	for _, eq := range in.Equipment {
		base := eq.SessionRateCents
		line := model.PriceLine{
			Label:        fmt.Sprintf("Equipment: %s", eq.Name),
			ListingID:    eq.ID,
			BaseCents:    base,
			FeeCents:     base.ApplyBasisPoints(c.serviceFeeBP),
			DepositCents: eq.DamageDepositCents,
		}
		bd.Lines = append(bd.Lines, line)
		bd.EquipmentSubtotal += line.BaseCents
		bd.ServiceFees += line.FeeCents
		bd.Deposits += line.DepositCents
	}

	for _, line := range bd.Lines {
		bd.TotalCents += line.TotalCents()
	}
	return bd
}

// ExtensionCharge prices pushing a storage reservation's end date out by
// extensionDays at the listing's daily rate, plus the per-item service fee.
func (c *Calculator) ExtensionCharge(listing *model.StorageListing, extensionDays int) model.Cents {
	base := listing.DailyRateCents * model.Cents(extensionDays)
	return base + base.ApplyBasisPoints(c.serviceFeeBP)
}

// OverstayPenalty computes dailyRate x overdueDays scaled by the configured
// multiplier in basis points.
func OverstayPenalty(dailyRate model.Cents, overdueDays int, multiplierBP int64) model.Cents {
	if overdueDays <= 0 {
		return 0
	}
	return (dailyRate * model.Cents(overdueDays)).ApplyBasisPoints(multiplierBP)
}

// LedgerSplit allocates a collected gross into platform fee, processor fee
// and manager net. The net absorbs rounding so the three parts always sum to
// the gross.
func (c *Calculator) LedgerSplit(bookingID string, gross model.Cents) model.BookingLedger {
	platform := gross.ApplyBasisPoints(c.platformFeeBP)
	processor := gross.ApplyBasisPoints(c.processorFeeBP) + model.Cents(c.processorFeeFixed)
	net := gross - platform - processor
	if net < 0 {
		net = 0
	}
	return model.BookingLedger{
		BookingID:         bookingID,
		GrossCents:        gross,
		PlatformFeeCents:  platform,
		ProcessorFeeCents: processor,
		ManagerNetCents:   net,
	}
}
