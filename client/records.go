package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medisync/clinic-client/internal/utils"
	"github.com/medisync/clinic-client/types"
)

// PatientProfile returns the patient record behind /patients/me.
// Cache-eligible: the last successful profile is served offline.
func (c *Client) PatientProfile(ctx context.Context) (*types.Patient, error) {
	var patient types.Patient
	err := c.Call(ctx, CallSpec{
		Method:   http.MethodGet,
		Path:     "/patients/me",
		CacheKey: CacheKeyPatientProfile,
	}, &patient)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// UpdatePatientProfile applies a partial update to the patient record.
func (c *Client) UpdatePatientProfile(ctx context.Context, update map[string]any) (*types.Patient, error) {
	var patient types.Patient
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPut,
		Path:   "/patients/me",
		Body:   update,
	}, &patient)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// MedicalHistory is the onboarding payload for the patient's medical
// background.
type MedicalHistory struct {
	Conditions  *string
	Allergies   *string
	Medications *string
}

// SaveMedicalHistory stores onboarding medical-history answers on the
// patient record.
func (c *Client) SaveMedicalHistory(ctx context.Context, history MedicalHistory) error {
	update := map[string]any{}
	if history.Conditions != nil {
		update["active_problems"] = utils.Value(history.Conditions)
	}
	if history.Allergies != nil {
		update["allergies"] = utils.Value(history.Allergies)
	}
	if history.Medications != nil {
		update["notes"] = "Medications: " + utils.Value(history.Medications)
	}
	_, err := c.UpdatePatientProfile(ctx, update)
	return err
}

// MedicalRecords returns the patient's clinical history.
func (c *Client) MedicalRecords(ctx context.Context) ([]types.ClinicalRecord, error) {
	var records []types.ClinicalRecord
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/clinical/me/history"}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Prescriptions returns the patient's medication orders.
func (c *Client) Prescriptions(ctx context.Context) ([]types.Prescription, error) {
	var prescriptions []types.Prescription
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/patient/prescriptions"}, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// TestResults returns the patient's exam results.
func (c *Client) TestResults(ctx context.Context) ([]types.TestResult, error) {
	var results []types.TestResult
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/patient/exam-results"}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Dashboard returns the patient dashboard summary as raw JSON; its
// shape varies by clinic configuration.
func (c *Client) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var dashboard json.RawMessage
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/patient/dashboard"}, &dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// HealthData returns the patient's health metrics summary as raw JSON.
func (c *Client) HealthData(ctx context.Context) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/patient/health"}, &data); err != nil {
		return nil, err
	}
	return data, nil
}
