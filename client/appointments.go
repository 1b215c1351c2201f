package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/pkg/errors"

	"github.com/medisync/clinic-client/apierror"
	"github.com/medisync/clinic-client/offline"
	"github.com/medisync/clinic-client/types"
)

const defaultAppointmentMinutes = 30

// UpcomingAppointments returns the patient's future appointments,
// soonest first, excluding cancelled and completed ones. The filtered
// result is cache-eligible: under connectivity loss the last successful
// list is served instead of an error.
func (c *Client) UpcomingAppointments(ctx context.Context) ([]types.Appointment, error) {
	var all []types.Appointment
	err := c.Call(ctx, CallSpec{
		Method:   http.MethodGet,
		Path:     "/appointments/patient-appointments",
		CacheKey: CacheKeyUpcomingAppointments,
	}, &all)
	if err != nil {
		return nil, err
	}

	now := c.nowTime()
	upcoming := make([]types.Appointment, 0, len(all))
	for _, apt := range all {
		if apt.ScheduledDatetime.Before(now) {
			continue
		}
		if apt.Status == types.AppointmentCancelled || apt.Status == types.AppointmentCompleted {
			continue
		}
		upcoming = append(upcoming, apt)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledDatetime.Before(upcoming[j].ScheduledDatetime)
	})
	return upcoming, nil
}

// Appointments returns the patient's full appointment history, newest
// first.
func (c *Client) Appointments(ctx context.Context) ([]types.Appointment, error) {
	var all []types.Appointment
	err := c.Call(ctx, CallSpec{
		Method: http.MethodGet,
		Path:   "/appointments/patient-appointments",
	}, &all)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[j].ScheduledDatetime.Before(all[i].ScheduledDatetime)
	})
	return all, nil
}

// Doctors lists the clinic's doctors.
func (c *Client) Doctors(ctx context.Context) ([]types.User, error) {
	var doctors []types.User
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/users/doctors"}, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// DoctorAvailability returns a doctor's open slots for the given ISO
// date (YYYY-MM-DD).
func (c *Client) DoctorAvailability(ctx context.Context, doctorID int64, dateISO string) ([]types.AvailabilitySlot, error) {
	var slots []types.AvailabilitySlot
	err := c.Call(ctx, CallSpec{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/appointments/doctor/%d/availability?date=%s", doctorID, dateISO),
	}, &slots)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// BookAppointment books a consultation. The booking flow is the one
// queue-eligible write: when the backend is unreachable the payload is
// queued durably and a placeholder appointment marked Pending is
// returned so the caller can proceed optimistically.
func (c *Client) BookAppointment(ctx context.Context, req types.BookingRequest) (*types.Appointment, error) {
	if req.AppointmentType == "" {
		req.AppointmentType = "consultation"
	}

	if req.PatientID == 0 || req.ClinicID == 0 {
		if err := c.fillBookingIdentity(ctx, &req); err != nil {
			var cerr *apierror.Error
			if errors.As(err, &cerr) && cerr.Kind == apierror.TransportFailure && cerr.Retriable {
				return c.queueBooking(ctx, req)
			}
			return nil, err
		}
	}

	var appt types.Appointment
	err := c.Call(ctx, CallSpec{
		Method:   http.MethodPost,
		Path:     "/appointments/patient/book",
		Body:     req,
		QueueKey: QueueKeyBookings,
	}, &appt)
	if err != nil {
		var qerr *QueuedError
		if errors.As(err, &qerr) {
			return placeholderAppointment(req, qerr.Mutation), nil
		}
		return nil, err
	}
	return &appt, nil
}

// fillBookingIdentity resolves the patient and clinic the booking
// belongs to from the authenticated profile.
func (c *Client) fillBookingIdentity(ctx context.Context, req *types.BookingRequest) error {
	if req.ClinicID == 0 {
		user, err := c.CurrentUser(ctx)
		if err != nil {
			return err
		}
		req.ClinicID = user.ClinicID
	}
	if req.PatientID == 0 {
		patient, err := c.PatientProfile(ctx)
		if err != nil {
			return err
		}
		req.PatientID = patient.ID
	}
	return nil
}

// queueBooking appends the booking to the offline queue directly, for
// the case where connectivity was lost before the booking call itself
// could run.
func (c *Client) queueBooking(ctx context.Context, req types.BookingRequest) (*types.Appointment, error) {
	mutation, err := offline.New(c.stores.Cache, QueueKeyBookings).Append(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.queueBooking] append")
	}
	c.metrics.RecordQueuedMutation()
	c.log.Info().Str("id", mutation.ID).Msg("booking queued for replay")
	return placeholderAppointment(req, mutation), nil
}

// placeholderAppointment is the synthetic result returned for a queued
// booking. Pending and LocalRef mark it as not yet acknowledged by the
// backend.
func placeholderAppointment(req types.BookingRequest, m *offline.Mutation) *types.Appointment {
	return &types.Appointment{
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		ScheduledDatetime: req.ScheduledDatetime,
		DurationMinutes:   defaultAppointmentMinutes,
		Status:            types.AppointmentScheduled,
		AppointmentType:   req.AppointmentType,
		Reason:            req.Reason,
		ClinicID:          req.ClinicID,
		Pending:           true,
		LocalRef:          m.ID,
	}
}

// CancelAppointment cancels a booked appointment.
func (c *Client) CancelAppointment(ctx context.Context, appointmentID int64, reason *string) error {
	return c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/appointments/%d/cancel", appointmentID),
		Body:   map[string]any{"reason": reason},
	}, nil)
}

// RescheduleAppointment moves an appointment to a new datetime.
func (c *Client) RescheduleAppointment(ctx context.Context, appointmentID int64, newDatetime string) (*types.Appointment, error) {
	var appt types.Appointment
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/appointments/%d/reschedule", appointmentID),
		Body:   map[string]string{"scheduled_datetime": newDatetime},
	}, &appt)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// PendingBookings lists bookings queued while offline, in enqueue
// order.
func (c *Client) PendingBookings(ctx context.Context) ([]offline.Mutation, error) {
	return offline.New(c.stores.Cache, QueueKeyBookings).Entries(ctx)
}

// ReplayBookings re-submits queued bookings in FIFO order. An entry is
// removed only after its replay succeeds; replay stops at the first
// failure so order is preserved for the next attempt. Replays are never
// re-queued. Returns how many bookings were delivered.
func (c *Client) ReplayBookings(ctx context.Context) (int, error) {
	queue := offline.New(c.stores.Cache, QueueKeyBookings)
	entries, err := queue.Entries(ctx)
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, entry := range entries {
		var req types.BookingRequest
		if err := json.Unmarshal(entry.Payload, &req); err != nil {
			return replayed, errors.Wrap(err, "[Client.ReplayBookings] decode queued booking")
		}
		var appt types.Appointment
		if err := c.Call(ctx, CallSpec{
			Method: http.MethodPost,
			Path:   "/appointments/patient/book",
			Body:   req,
		}, &appt); err != nil {
			return replayed, err
		}
		if err := queue.Remove(ctx, entry.ID); err != nil {
			return replayed, err
		}
		replayed++
		c.log.Info().Str("id", entry.ID).Int64("appointment", appt.ID).Msg("queued booking delivered")
	}
	return replayed, nil
}
