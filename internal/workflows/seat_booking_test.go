package workflows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/busseat/internal/adapters/memory"
	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/usecases"
	"github.com/samirrijal/busseat/internal/pkg/clock"
)

type SeatBookingWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env  *testsuite.TestWorkflowEnvironment
	acts *BookingActivities
}

func (s *SeatBookingWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.acts = &BookingActivities{}
}

func (s *SeatBookingWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func TestSeatBookingWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(SeatBookingWorkflowTestSuite))
}

func (s *SeatBookingWorkflowTestSuite) input() SeatBookingInput {
	return SeatBookingInput{
		TripID:         "trip-1",
		BookingID:      "bk-1",
		Seats:          []string{"A1", "A2"},
		PassengerNames: []string{"Nguyen Van A", "Tran Thi B"},
		HoldTTL:        10 * time.Minute,
	}
}

func (s *SeatBookingWorkflowTestSuite) result() SeatBookingResult {
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var res SeatBookingResult
	s.NoError(s.env.GetWorkflowResult(&res))
	return res
}

func (s *SeatBookingWorkflowTestSuite) TestConfirmBooksSeats() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, HoldSeatsInput{
		TripID: "trip-1", BookingID: "bk-1", Seats: []string{"A1", "A2"}, TTL: 10 * time.Minute,
	}).Return(nil).Once()
	s.env.OnActivity(s.acts.BookSeats, mock.Anything, BookSeatsInput{
		TripID: "trip-1", BookingID: "bk-1", Seats: []string{"A1", "A2"}, PassengerNames: []string{"Nguyen Van A", "Tran Thi B"},
	}).Return(nil).Once()

	s.env.RegisterDelayedCallback(func() {
		res, err := s.env.QueryWorkflow(StatusQuery)
		s.NoError(err)
		var status BookingStatus
		s.NoError(res.Get(&status))
		s.Equal(BookingHolding, status)

		s.env.SignalWorkflow(ConfirmSignal, ConfirmBooking{})
	}, 2*time.Minute)

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, s.input())

	res := s.result()
	s.Equal(BookingBooked, res.Status)
	s.Equal([]string{"A1", "A2"}, res.Seats)
}

func (s *SeatBookingWorkflowTestSuite) TestConfirmationNamesWin() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, mock.Anything).Return(nil)
	s.env.OnActivity(s.acts.BookSeats, mock.Anything, mock.MatchedBy(func(in BookSeatsInput) bool {
		return len(in.PassengerNames) == 2 && in.PassengerNames[0] == "Le Van C"
	})).Return(nil).Once()

	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(ConfirmSignal, ConfirmBooking{PassengerNames: []string{"Le Van C", "Pham Thi D"}})
	}, time.Minute)

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, s.input())

	s.Equal(BookingBooked, s.result().Status)
}

func (s *SeatBookingWorkflowTestSuite) TestHoldExpiresAndReleases() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, mock.Anything).Return(nil)
	s.env.OnActivity(s.acts.ReleaseSeats, mock.Anything, ReleaseSeatsInput{
		TripID: "trip-1", BookingID: "bk-1", Seats: []string{"A1", "A2"},
	}).Return(nil).Once()

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, s.input())

	res := s.result()
	s.Equal(BookingExpired, res.Status)
	s.Equal("seat hold expired", res.Reason)
}

func (s *SeatBookingWorkflowTestSuite) TestDefaultHoldTTL() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, mock.MatchedBy(func(in HoldSeatsInput) bool {
		return in.TTL == DefaultHoldTTL
	})).Return(nil).Once()
	s.env.OnActivity(s.acts.ReleaseSeats, mock.Anything, mock.Anything).Return(nil)

	in := s.input()
	in.HoldTTL = 0
	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, in)

	s.Equal(BookingExpired, s.result().Status)
}

func (s *SeatBookingWorkflowTestSuite) TestCancelReleases() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, mock.Anything).Return(nil)
	s.env.OnActivity(s.acts.ReleaseSeats, mock.Anything, mock.Anything).Return(nil).Once()

	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(CancelSignal, CancelBooking{Reason: "changed plans"})
	}, time.Minute)

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, s.input())

	res := s.result()
	s.Equal(BookingCancelled, res.Status)
	s.Equal("changed plans", res.Reason)
}

func (s *SeatBookingWorkflowTestSuite) TestHoldRejected() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, mock.Anything).
		Return(temporal.NewNonRetryableApplicationError("seats already taken: A2", "SeatConflictError", nil)).Once()

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, s.input())

	res := s.result()
	s.Equal(BookingRejected, res.Status)
	s.Contains(res.Reason, "A2")
}

func (s *SeatBookingWorkflowTestSuite) TestBookingFailureReleasesHold() {
	s.env.RegisterActivity(s.acts)
	s.env.OnActivity(s.acts.HoldSeats, mock.Anything, mock.Anything).Return(nil)
	s.env.OnActivity(s.acts.BookSeats, mock.Anything, mock.Anything).
		Return(temporal.NewNonRetryableApplicationError("trip is cancelled", "ValidationError", nil)).Once()
	s.env.OnActivity(s.acts.ReleaseSeats, mock.Anything, mock.Anything).Return(nil).Once()

	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(ConfirmSignal, ConfirmBooking{})
	}, time.Minute)

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, s.input())

	s.Equal(BookingRejected, s.result().Status)
}

// TestAgainstTripService runs the real activities on the in-memory adapters.
func (s *SeatBookingWorkflowTestSuite) TestAgainstTripService() {
	clk := clock.Real{}
	dir := memory.NewDirectory()
	dir.PutRoute(domain.RouteInfo{ID: "r-1", OperatorID: "op-1", IsActive: true, StopCount: 2})
	dir.PutBus(domain.BusInfo{ID: "b-1", OperatorID: "op-1", Status: domain.BusStatusActive, LayoutSeats: 30})
	dir.PutEmployee(domain.Employee{ID: "drv-1", OperatorID: "op-1", Role: domain.RoleDriver, Status: domain.EmployeeActive})
	dir.PutEmployee(domain.Employee{ID: "mgr-1", OperatorID: "op-1", Role: domain.RoleTripManager, Status: domain.EmployeeActive})
	svc := usecases.NewTripService(memory.NewTripRepo(),
		usecases.NewTripValidator(dir.Routes(), dir.Buses(), dir.Employees(), clk),
		memory.NewSeatHolds(clk), nil, nil, clk, usecases.TripServiceOptions{})

	departure := time.Now().Add(72 * time.Hour)
	trip, err := svc.CreateTrip(context.Background(), "op-1", usecases.TripSpec{
		RouteID: "r-1", BusID: "b-1", DriverID: "drv-1", TripManagerID: "mgr-1",
		DepartureTime: departure, ArrivalTime: departure.Add(4 * time.Hour), BasePrice: 300000,
	})
	s.Require().NoError(err)

	s.env.RegisterActivity(&BookingActivities{Trips: svc})
	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(ConfirmSignal, ConfirmBooking{})
	}, time.Minute)

	s.env.ExecuteWorkflow(SeatHoldBookingWorkflow, SeatBookingInput{
		TripID: trip.ID, BookingID: "bk-9", Seats: []string{"A3", "A4"}, HoldTTL: 5 * time.Minute,
	})
	s.Equal(BookingBooked, s.result().Status)

	booked, err := svc.GetByID(context.Background(), trip.ID)
	s.Require().NoError(err)
	s.Equal(28, booked.AvailableSeats)
	s.True(booked.IsSeatBooked("A3"))

	m, err := svc.SeatMap(context.Background(), trip.ID)
	s.Require().NoError(err)
	s.Empty(m.Held)
}
