// Package offers decides whether a special offer applies to a cart and how
// much it takes off, and redeems offers atomically.
package offers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"saree-api/models"
)

var (
	ErrOfferInactive      = errors.New("offer is not active")
	ErrOfferNotStarted    = errors.New("offer has not started yet")
	ErrOfferExpired       = errors.New("offer has expired")
	ErrOfferOutsideHours  = errors.New("offer is not available at this time")
	ErrOfferNotApplicable = errors.New("offer does not apply to this order")
	ErrBelowMinimumOrder  = errors.New("order subtotal is below the offer minimum")
	ErrOfferExhausted     = errors.New("offer usage limit reached")
)

// Cart is what an offer is evaluated against.
type Cart struct {
	RestaurantID uuid.UUID
	CategoryID   *uuid.UUID
	Lines        []models.OrderLine
	Subtotal     float64
	DeliveryFee  float64
}

// Quote is the outcome of a successful evaluation.
type Quote struct {
	OfferID      uuid.UUID `json:"offer_id"`
	Eligible     float64   `json:"eligible_subtotal"`
	Discount     float64   `json:"discount"`
	FreeDelivery bool      `json:"free_delivery"`
}

// CheckAvailable runs the cart independent checks: active flag, date range,
// daily time window, weekday and remaining usage.
func CheckAvailable(o *models.SpecialOffer, now time.Time) error {
	if !o.IsActive {
		return ErrOfferInactive
	}
	if now.Before(o.StartDate) {
		return ErrOfferNotStarted
	}
	if now.After(o.EndDate) {
		return ErrOfferExpired
	}
	if len(o.DaysOfWeek) > 0 && !containsDay(o.DaysOfWeek, int(now.Weekday())) {
		return ErrOfferOutsideHours
	}
	if o.StartTime != "" && o.EndTime != "" {
		in, err := withinHours(o.StartTime, o.EndTime, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOfferOutsideHours, err)
		}
		if !in {
			return ErrOfferOutsideHours
		}
	}
	if o.UsageLimit != nil && o.UsageCount >= *o.UsageLimit {
		return ErrOfferExhausted
	}
	return nil
}

// Evaluate checks o against cart at now and computes the discount. The
// discount is never negative, never above MaxDiscount when set and never
// above the subtotal the offer applies to.
func Evaluate(o *models.SpecialOffer, cart Cart, now time.Time) (Quote, error) {
	if err := CheckAvailable(o, now); err != nil {
		return Quote{}, err
	}
	if o.RestaurantID != nil && *o.RestaurantID != cart.RestaurantID {
		return Quote{}, ErrOfferNotApplicable
	}
	if o.CategoryID != nil && (cart.CategoryID == nil || *o.CategoryID != *cart.CategoryID) {
		return Quote{}, ErrOfferNotApplicable
	}
	if cart.Subtotal < o.MinimumOrder {
		return Quote{}, ErrBelowMinimumOrder
	}

	eligible := eligibleLines(o, cart.Lines)
	if len(eligible) == 0 {
		return Quote{}, ErrOfferNotApplicable
	}
	base := cart.Subtotal
	if len(o.MenuItemIDs) > 0 {
		base = 0
		for _, l := range eligible {
			base += l.LineTotal
		}
	}

	q := Quote{OfferID: o.ID, Eligible: round2(base)}
	var discount float64
	switch {
	case o.Type == models.OfferTypeFreeDelivery:
		discount = cart.DeliveryFee
		q.FreeDelivery = true
	case o.Type == models.OfferTypeBuyOneGetOne && o.DiscountType == "":
		for _, l := range eligible {
			discount += float64(l.Quantity/2) * l.Price
		}
	case o.DiscountType == models.DiscountPercentage:
		discount = base * o.DiscountValue / 100
	case o.DiscountType == models.DiscountFixedAmount:
		discount = o.DiscountValue
	default:
		return Quote{}, fmt.Errorf("%w: unknown discount type %q", ErrOfferNotApplicable, o.DiscountType)
	}

	if o.MaxDiscount != nil && discount > *o.MaxDiscount {
		discount = *o.MaxDiscount
	}
	if discount > base {
		discount = base
	}
	if discount < 0 {
		discount = 0
	}
	q.Discount = round2(discount)
	return q, nil
}

func eligibleLines(o *models.SpecialOffer, lines []models.OrderLine) []models.OrderLine {
	if len(o.MenuItemIDs) == 0 {
		return lines
	}
	scope := make(map[uuid.UUID]struct{}, len(o.MenuItemIDs))
	for _, id := range o.MenuItemIDs {
		scope[id] = struct{}{}
	}
	var out []models.OrderLine
	for _, l := range lines {
		if _, ok := scope[l.MenuItemID]; ok {
			out = append(out, l)
		}
	}
	return out
}

func containsDay(days []int, d int) bool {
	for _, v := range days {
		if v == d {
			return true
		}
	}
	return false
}

// withinHours reports whether now's wall clock falls in [start, end].
// A window whose end is before its start wraps past midnight.
func withinHours(start, end string, now time.Time) (bool, error) {
	s, err := parseClock(start)
	if err != nil {
		return false, err
	}
	e, err := parseClock(end)
	if err != nil {
		return false, err
	}
	m := now.Hour()*60 + now.Minute()
	if s <= e {
		return m >= s && m <= e, nil
	}
	return m >= s || m <= e, nil
}

// parseClock turns "HH:MM" (or "HH:MM:SS") into minutes after midnight.
func parseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// ValidClock reports whether v is a usable "HH:MM" value.
func ValidClock(v string) bool {
	_, err := parseClock(v)
	return err == nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
