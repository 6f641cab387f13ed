package domain

import (
	"math"
	"time"
)

// DemandMultiplier raises the price when occupancy crosses a threshold.
// Thresholds are occupancy percentages (0-100).
type DemandMultiplier struct {
	Enabled            bool    `json:"enabled" mapstructure:"enabled"`
	HighThreshold      float64 `json:"high_threshold" mapstructure:"high_threshold"`
	HighMultiplier     float64 `json:"high_multiplier" mapstructure:"high_multiplier"`
	VeryHighThreshold  float64 `json:"very_high_threshold" mapstructure:"very_high_threshold"`
	VeryHighMultiplier float64 `json:"very_high_multiplier" mapstructure:"very_high_multiplier"`
}

// EarlyBirdDiscount lowers the price for bookings made well ahead of departure.
type EarlyBirdDiscount struct {
	Enabled             bool    `json:"enabled" mapstructure:"enabled"`
	DaysBeforeDeparture int     `json:"days_before_departure" mapstructure:"days_before_departure"`
	DiscountPercentage  float64 `json:"discount_percentage" mapstructure:"discount_percentage"`
}

// PeakHoursPremium raises the price of departures in busy hours.
type PeakHoursPremium struct {
	Enabled           bool    `json:"enabled" mapstructure:"enabled"`
	PeakHours         []int   `json:"peak_hours" mapstructure:"peak_hours"`
	PremiumPercentage float64 `json:"premium_percentage" mapstructure:"premium_percentage"`
}

// WeekendPremium raises the price of Saturday and Sunday departures.
type WeekendPremium struct {
	Enabled           bool    `json:"enabled" mapstructure:"enabled"`
	PremiumPercentage float64 `json:"premium_percentage" mapstructure:"premium_percentage"`
}

// PricingConfig holds a trip's dynamic pricing rules.
type PricingConfig struct {
	Enabled           bool              `json:"enabled" mapstructure:"enabled"`
	DemandMultiplier  DemandMultiplier  `json:"demand_multiplier" mapstructure:"demand_multiplier"`
	EarlyBirdDiscount EarlyBirdDiscount `json:"early_bird_discount" mapstructure:"early_bird_discount"`
	PeakHoursPremium  PeakHoursPremium  `json:"peak_hours_premium" mapstructure:"peak_hours_premium"`
	WeekendPremium    WeekendPremium    `json:"weekend_premium" mapstructure:"weekend_premium"`
}

// DefaultPricingConfig is applied to trips created without explicit rules.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Enabled: false,
		DemandMultiplier: DemandMultiplier{
			Enabled:            true,
			HighThreshold:      80,
			HighMultiplier:     1.2,
			VeryHighThreshold:  95,
			VeryHighMultiplier: 1.5,
		},
		EarlyBirdDiscount: EarlyBirdDiscount{
			Enabled:             true,
			DaysBeforeDeparture: 7,
			DiscountPercentage:  10,
		},
		PeakHoursPremium: PeakHoursPremium{
			Enabled:           true,
			PeakHours:         []int{6, 7, 8, 17, 18, 19},
			PremiumPercentage: 10,
		},
		WeekendPremium: WeekendPremium{
			Enabled:           true,
			PremiumPercentage: 15,
		},
	}
}

// Validate checks that thresholds, multipliers and percentages are sane.
func (c PricingConfig) Validate() error {
	dm := c.DemandMultiplier
	if dm.Enabled {
		if dm.HighThreshold < 0 || dm.HighThreshold > 100 || dm.VeryHighThreshold < 0 || dm.VeryHighThreshold > 100 {
			return NewValidationError("dynamic_pricing_config.demand_multiplier", "thresholds must be within 0-100")
		}
		if dm.VeryHighThreshold < dm.HighThreshold {
			return NewValidationError("dynamic_pricing_config.demand_multiplier", "very_high_threshold must not be below high_threshold")
		}
		if dm.HighMultiplier < 1 || dm.VeryHighMultiplier < 1 {
			return NewValidationError("dynamic_pricing_config.demand_multiplier", "multipliers must be at least 1")
		}
	}
	eb := c.EarlyBirdDiscount
	if eb.Enabled && (eb.DaysBeforeDeparture < 0 || eb.DiscountPercentage < 0 || eb.DiscountPercentage > 100) {
		return NewValidationError("dynamic_pricing_config.early_bird_discount", "days must be >= 0 and percentage within 0-100")
	}
	ph := c.PeakHoursPremium
	if ph.Enabled {
		if ph.PremiumPercentage < 0 {
			return NewValidationError("dynamic_pricing_config.peak_hours_premium", "premium must be >= 0")
		}
		for _, h := range ph.PeakHours {
			if h < 0 || h > 23 {
				return NewValidationError("dynamic_pricing_config.peak_hours_premium", "hour %d outside 0-23", h)
			}
		}
	}
	if c.WeekendPremium.Enabled && c.WeekendPremium.PremiumPercentage < 0 {
		return NewValidationError("dynamic_pricing_config.weekend_premium", "premium must be >= 0")
	}
	return nil
}

// PricingInput is everything the pricing engine looks at.
type PricingInput struct {
	BasePrice     int64
	FinalPrice    int64 // stored price, returned as-is when dynamic pricing is off
	Discount      float64
	BookedSeats   int
	TotalSeats    int
	DepartureTime time.Time
	BookingDate   time.Time
	Location      *time.Location // zone for peak hours and weekends; UTC when nil
	Config        PricingConfig
}

// PriceBreakdown explains how a final price was reached.
type PriceBreakdown struct {
	BasePrice         int64   `json:"base_price"`
	OccupancyRate     float64 `json:"occupancy_rate"`
	DemandSurge       float64 `json:"demand_surge"`
	EarlyBirdDiscount float64 `json:"early_bird_discount"`
	PeakHoursPremium  float64 `json:"peak_hours_premium"`
	WeekendPremium    float64 `json:"weekend_premium"`
	ManualDiscount    float64 `json:"manual_discount"`
	FinalPrice        int64   `json:"final_price"`
	DynamicPricing    bool    `json:"dynamic_pricing"`
}

// PricingInputFor collects the pricing inputs of a trip.
func (t *Trip) PricingInputFor(bookingDate time.Time, loc *time.Location) PricingInput {
	return PricingInput{
		BasePrice:     t.BasePrice,
		FinalPrice:    t.FinalPrice,
		Discount:      t.Discount,
		BookedSeats:   len(t.BookedSeats),
		TotalSeats:    t.TotalSeats,
		DepartureTime: t.DepartureTime,
		BookingDate:   bookingDate,
		Location:      loc,
		Config:        t.DynamicPricingConfig,
	}
}

// RecomputeFinalPrice stores the static price: base price less the manual discount.
func (t *Trip) RecomputeFinalPrice() {
	t.FinalPrice = roundPrice(float64(t.BasePrice) * (1 - t.Discount/100))
}

// CalculatePrice applies, in order: demand surge (one tier only), early-bird
// discount, peak-hour premium, weekend premium and finally the manual
// discount. The result is clamped at zero and rounded to whole units.
func CalculatePrice(in PricingInput) PriceBreakdown {
	out := PriceBreakdown{BasePrice: in.BasePrice}
	if in.TotalSeats > 0 {
		out.OccupancyRate = float64(in.BookedSeats) / float64(in.TotalSeats)
	}

	if !in.Config.Enabled {
		out.FinalPrice = in.FinalPrice
		if out.FinalPrice == 0 {
			out.FinalPrice = in.BasePrice
		}
		return out
	}
	out.DynamicPricing = true

	base := float64(in.BasePrice)
	price := base
	cfg := in.Config

	if dm := cfg.DemandMultiplier; dm.Enabled && in.TotalSeats > 0 {
		// booked/total >= threshold/100, kept out of float division.
		booked, total := float64(in.BookedSeats)*100, float64(in.TotalSeats)
		switch {
		case booked >= dm.VeryHighThreshold*total:
			out.DemandSurge = base * (dm.VeryHighMultiplier - 1)
		case booked >= dm.HighThreshold*total:
			out.DemandSurge = base * (dm.HighMultiplier - 1)
		}
		price += out.DemandSurge
	}

	if eb := cfg.EarlyBirdDiscount; eb.Enabled {
		if daysUntil(in.BookingDate, in.DepartureTime) >= eb.DaysBeforeDeparture {
			out.EarlyBirdDiscount = base * eb.DiscountPercentage / 100
			price -= out.EarlyBirdDiscount
		}
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	local := in.DepartureTime.In(loc)

	if ph := cfg.PeakHoursPremium; ph.Enabled {
		for _, h := range ph.PeakHours {
			if local.Hour() == h {
				out.PeakHoursPremium = base * ph.PremiumPercentage / 100
				price += out.PeakHoursPremium
				break
			}
		}
	}

	if wp := cfg.WeekendPremium; wp.Enabled {
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			out.WeekendPremium = base * wp.PremiumPercentage / 100
			price += out.WeekendPremium
		}
	}

	if in.Discount > 0 {
		out.ManualDiscount = price * in.Discount / 100
		price -= out.ManualDiscount
	}

	if price < 0 {
		price = 0
	}
	out.FinalPrice = roundPrice(price)
	return out
}

// daysUntil counts started days between booking and departure.
func daysUntil(booking, departure time.Time) int {
	d := departure.Sub(booking)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func roundPrice(v float64) int64 {
	if v < 0 {
		return 0
	}
	return int64(math.Round(v))
}
