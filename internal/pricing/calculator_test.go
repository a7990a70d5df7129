package pricing

import (
	"reflect"
	"testing"

	"mise/pkg/model"
)

func newTestCalculator() *Calculator {
	// 10% service fee, 15% platform fee, 2.9% + 30c processor fee
	return NewCalculator(1000, 1500, 290, 30, "usd")
}

func TestQuoteKitchenOnly(t *testing.T) {
	calc := newTestCalculator()

	bd := calc.Quote(Input{
		Kitchen: &model.KitchenListing{ID: "k1", Name: "Test Kitchen", HourlyRateCents: 5000},
		Minutes: 90,
	})

	// 90 min at $50/h = $75.00, fee 10% = $7.50
	if bd.KitchenSubtotal != 7500 {
		t.Errorf("expected kitchen subtotal 7500, got %d", bd.KitchenSubtotal)
	}
	if bd.ServiceFees != 750 {
		t.Errorf("expected service fees 750, got %d", bd.ServiceFees)
	}
	if bd.TotalCents != 8250 {
		t.Errorf("expected total 8250, got %d", bd.TotalCents)
	}
}

func TestQuoteFractionalHourRoundsHalfUp(t *testing.T) {
	calc := newTestCalculator()

	// 50 min at $10.01/h = 1001*50/60 = 834.1666 -> 834
	bd := calc.Quote(Input{
		Kitchen: &model.KitchenListing{ID: "k1", Name: "K", HourlyRateCents: 1001},
		Minutes: 50,
	})
	if bd.KitchenSubtotal != 834 {
		t.Errorf("expected kitchen subtotal 834, got %d", bd.KitchenSubtotal)
	}

	// 30 min at $1.01/h = 101*30/60 = 50.5 -> 51 (half rounds up)
	bd = calc.Quote(Input{
		Kitchen: &model.KitchenListing{ID: "k1", Name: "K", HourlyRateCents: 101},
		Minutes: 30,
	})
	if bd.KitchenSubtotal != 51 {
		t.Errorf("expected kitchen subtotal 51, got %d", bd.KitchenSubtotal)
	}
}

func TestQuoteStoragePartialPeriodRoundsUp(t *testing.T) {
	calc := newTestCalculator()

	// 10 days on a 7-day period = 2 periods
	bd := calc.Quote(Input{
		Storage: []StorageItem{{
			Listing: &model.StorageListing{ID: "s1", Name: "Cold Unit", PeriodRateCents: 2000, PeriodDays: 7, DailyRateCents: 300},
			Days:    10,
		}},
	})
	if bd.StorageSubtotal != 4000 {
		t.Errorf("expected storage subtotal 4000, got %d", bd.StorageSubtotal)
	}
	if bd.ServiceFees != 400 {
		t.Errorf("expected service fees 400, got %d", bd.ServiceFees)
	}
}

func TestQuoteEquipmentDepositOutsideFeeBase(t *testing.T) {
	calc := newTestCalculator()

	bd := calc.Quote(Input{
		Equipment: []*model.EquipmentListing{{
			ID: "e1", Name: "Mixer", SessionRateCents: 1500, DamageDepositCents: 10000,
		}},
	})

	// Fee applies to the session rate only, never the deposit.
	if bd.ServiceFees != 150 {
		t.Errorf("expected service fees 150, got %d", bd.ServiceFees)
	}
	if bd.Deposits != 10000 {
		t.Errorf("expected deposits 10000, got %d", bd.Deposits)
	}
	if bd.TotalCents != 11650 {
		t.Errorf("expected total 11650, got %d", bd.TotalCents)
	}
}

func TestQuoteTotalEqualsSumOfLines(t *testing.T) {
	calc := newTestCalculator()

	bd := calc.Quote(Input{
		Kitchen: &model.KitchenListing{ID: "k1", Name: "K", HourlyRateCents: 3333},
		Minutes: 125,
		Storage: []StorageItem{
			{Listing: &model.StorageListing{ID: "s1", Name: "Dry", PeriodRateCents: 777, PeriodDays: 3, DailyRateCents: 259}, Days: 8},
			{Listing: &model.StorageListing{ID: "s2", Name: "Cold", PeriodRateCents: 1299, PeriodDays: 7, DailyRateCents: 186}, Days: 14},
		},
		Equipment: []*model.EquipmentListing{
			{ID: "e1", Name: "Mixer", SessionRateCents: 1500, DamageDepositCents: 5000},
			{ID: "e2", Name: "Oven", SessionRateCents: 2750, DamageDepositCents: 0},
		},
	})

	var sum model.Cents
	for _, line := range bd.Lines {
		sum += line.TotalCents()
	}
	if bd.TotalCents != sum {
		t.Errorf("total %d does not equal sum of lines %d", bd.TotalCents, sum)
	}
}

func TestQuoteDeterministic(t *testing.T) {
	calc := newTestCalculator()
	in := Input{
		Kitchen: &model.KitchenListing{ID: "k1", Name: "K", HourlyRateCents: 4100},
		Minutes: 95,
		Storage: []StorageItem{
			{Listing: &model.StorageListing{ID: "s1", Name: "Dry", PeriodRateCents: 900, PeriodDays: 7, DailyRateCents: 150}, Days: 9},
		},
	}

	first := calc.Quote(in)
	second := calc.Quote(in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different breakdowns:\n%+v\n%+v", first, second)
	}
}

func TestExtensionCharge(t *testing.T) {
	calc := newTestCalculator()
	listing := &model.StorageListing{DailyRateCents: 300}

	// 5 days at $3/day = $15 base + 10% fee = $16.50
	if got := calc.ExtensionCharge(listing, 5); got != 1650 {
		t.Errorf("expected extension charge 1650, got %d", got)
	}
}

func TestOverstayPenalty(t *testing.T) {
	tests := []struct {
		name         string
		dailyRate    model.Cents
		overdueDays  int
		multiplierBP int64
		want         model.Cents
	}{
		{"three days at 1.5x", 300, 3, 15000, 1350},
		{"one day at 1.5x", 500, 1, 15000, 750},
		{"zero days", 300, 0, 15000, 0},
		{"negative days", 300, -2, 15000, 0},
		{"double multiplier", 250, 4, 20000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverstayPenalty(tt.dailyRate, tt.overdueDays, tt.multiplierBP); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestLedgerSplitSumsToGross(t *testing.T) {
	calc := newTestCalculator()

	ledger := calc.LedgerSplit("b1", 10000)
	if ledger.PlatformFeeCents != 1500 {
		t.Errorf("expected platform fee 1500, got %d", ledger.PlatformFeeCents)
	}
	if ledger.ProcessorFeeCents != 320 {
		t.Errorf("expected processor fee 320, got %d", ledger.ProcessorFeeCents)
	}
	if ledger.ManagerNetCents != 8180 {
		t.Errorf("expected manager net 8180, got %d", ledger.ManagerNetCents)
	}
	sum := ledger.PlatformFeeCents + ledger.ProcessorFeeCents + ledger.ManagerNetCents
	if sum != ledger.GrossCents {
		t.Errorf("split parts sum to %d, gross is %d", sum, ledger.GrossCents)
	}
}
