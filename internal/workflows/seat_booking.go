package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// TaskQueue is the queue the booking worker polls.
	TaskQueue = "seat-booking"

	// ConfirmSignal completes the booking; CancelSignal abandons it.
	ConfirmSignal = "booking-confirmed"
	CancelSignal  = "booking-cancelled"

	// StatusQuery returns the current BookingStatus.
	StatusQuery = "status"

	// DefaultHoldTTL applies when the input carries no hold lifetime.
	DefaultHoldTTL = 15 * time.Minute
)

// BookingStatus is the state of a seat booking workflow.
type BookingStatus string

const (
	BookingHolding   BookingStatus = "holding"
	BookingBooked    BookingStatus = "booked"
	BookingExpired   BookingStatus = "expired"
	BookingCancelled BookingStatus = "cancelled"
	BookingRejected  BookingStatus = "rejected"
)

// SeatBookingInput is the input for SeatHoldBookingWorkflow.
type SeatBookingInput struct {
	TripID         string        `json:"trip_id"`
	BookingID      string        `json:"booking_id"`
	Seats          []string      `json:"seats"`
	PassengerNames []string      `json:"passenger_names,omitempty"`
	HoldTTL        time.Duration `json:"hold_ttl"`
}

// ConfirmBooking is the payload of ConfirmSignal. Names given here replace
// the ones from the workflow input.
type ConfirmBooking struct {
	PassengerNames []string `json:"passenger_names,omitempty"`
}

// CancelBooking is the payload of CancelSignal.
type CancelBooking struct {
	Reason string `json:"reason,omitempty"`
}

// SeatBookingResult is the outcome of SeatHoldBookingWorkflow.
type SeatBookingResult struct {
	Status BookingStatus `json:"status"`
	Seats  []string      `json:"seats"`
	Reason string        `json:"reason,omitempty"`
}

// WorkflowID is the workflow ID used for a booking, one workflow per booking.
func WorkflowID(bookingID string) string {
	return "seat-booking-" + bookingID
}

// SeatHoldBookingWorkflow holds the seats for the booking, then waits for
// the customer. A confirmation books the seats; a cancellation or the hold
// running out releases them.
func SeatHoldBookingWorkflow(ctx workflow.Context, in SeatBookingInput) (*SeatBookingResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Seat booking workflow started", "tripID", in.TripID, "bookingID", in.BookingID)

	ttl := in.HoldTTL
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	status := BookingHolding
	if err := workflow.SetQueryHandler(ctx, StatusQuery, func() (BookingStatus, error) {
		return status, nil
	}); err != nil {
		return nil, err
	}

	result := func(s BookingStatus, reason string) *SeatBookingResult {
		status = s
		return &SeatBookingResult{Status: s, Seats: in.Seats, Reason: reason}
	}
	var acts *BookingActivities
	release := func() {
		err := workflow.ExecuteActivity(ctx, acts.ReleaseSeats, ReleaseSeatsInput{
			TripID: in.TripID, BookingID: in.BookingID, Seats: in.Seats,
		}).Get(ctx, nil)
		if err != nil {
			// the hold expires on its own
			logger.Warn("Failed to release seats", "error", err)
		}
	}

	err := workflow.ExecuteActivity(ctx, acts.HoldSeats, HoldSeatsInput{
		TripID: in.TripID, BookingID: in.BookingID, Seats: in.Seats, TTL: ttl,
	}).Get(ctx, nil)
	if err != nil {
		logger.Info("Seat hold rejected", "error", err)
		return result(BookingRejected, failureReason(err)), nil
	}

	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	defer cancelTimer()

	var (
		confirmed bool
		cancelled bool
		confirm   ConfirmBooking
		cancel    CancelBooking
	)
	selector := workflow.NewSelector(ctx)
	selector.AddReceive(workflow.GetSignalChannel(ctx, ConfirmSignal), func(c workflow.ReceiveChannel, _ bool) {
		c.Receive(ctx, &confirm)
		confirmed = true
	})
	selector.AddReceive(workflow.GetSignalChannel(ctx, CancelSignal), func(c workflow.ReceiveChannel, _ bool) {
		c.Receive(ctx, &cancel)
		cancelled = true
	})
	selector.AddFuture(workflow.NewTimer(timerCtx, ttl), func(workflow.Future) {})
	selector.Select(ctx)
	cancelTimer()

	switch {
	case confirmed:
		names := in.PassengerNames
		if len(confirm.PassengerNames) > 0 {
			names = confirm.PassengerNames
		}
		err := workflow.ExecuteActivity(ctx, acts.BookSeats, BookSeatsInput{
			TripID: in.TripID, BookingID: in.BookingID, Seats: in.Seats, PassengerNames: names,
		}).Get(ctx, nil)
		if err != nil {
			logger.Warn("Booking failed, releasing hold", "error", err)
			release()
			return result(BookingRejected, failureReason(err)), nil
		}
		logger.Info("Seats booked", "bookingID", in.BookingID)
		return result(BookingBooked, ""), nil

	case cancelled:
		release()
		why := cancel.Reason
		if why == "" {
			why = "cancelled by customer"
		}
		return result(BookingCancelled, why), nil

	default:
		release()
		return result(BookingExpired, "seat hold expired"), nil
	}
}

func failureReason(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
