package service

import (
	"context"
	"fmt"
	"time"

	"carelink-alert/internal/models"
	"carelink-alert/internal/notifier"
)

type fakeReadingStore struct {
	bp       []*models.BPReading
	glucose  []*models.GlucoseReading
	symptoms []*models.SymptomReading
	err      error
}

func (f *fakeReadingStore) CreateBPReading(ctx context.Context, r *models.BPReading) error {
	if f.err != nil {
		return f.err
	}
	f.bp = append(f.bp, r)
	return nil
}

func (f *fakeReadingStore) CreateGlucoseReading(ctx context.Context, r *models.GlucoseReading) error {
	if f.err != nil {
		return f.err
	}
	f.glucose = append(f.glucose, r)
	return nil
}

func (f *fakeReadingStore) CreateSymptomReading(ctx context.Context, r *models.SymptomReading) error {
	if f.err != nil {
		return f.err
	}
	f.symptoms = append(f.symptoms, r)
	return nil
}

func (f *fakeReadingStore) rowCount() int {
	return len(f.bp) + len(f.glucose) + len(f.symptoms)
}

type fakeProfileDirectory struct {
	profiles map[string]*models.Profile
	members  []models.HouseholdMember
}

func (f *fakeProfileDirectory) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	p, ok := f.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("profile not found: profile_id=%s", profileID)
	}
	return p, nil
}

func (f *fakeProfileDirectory) GetHouseholdRecipients(ctx context.Context, householdID string) ([]models.HouseholdMember, error) {
	return f.members, nil
}

type fakeSettingsProvider struct {
	settings map[string]*models.AlertSettings
}

func (f *fakeSettingsProvider) GetOrCreate(ctx context.Context, profileID string) (*models.AlertSettings, error) {
	if s, ok := f.settings[profileID]; ok {
		return s, nil
	}
	return models.DefaultAlertSettings(profileID), nil
}

type fakeAlertStore struct {
	created  []*models.EmergencyAlert
	resolved map[string]string
	err      error
}

func (f *fakeAlertStore) CreateAlert(ctx context.Context, alert *models.EmergencyAlert) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, alert)
	return nil
}

func (f *fakeAlertStore) GetAlert(ctx context.Context, alertID string) (*models.EmergencyAlert, error) {
	for _, a := range f.created {
		if a.AlertID == alertID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("emergency alert not found: alert_id=%s", alertID)
}

func (f *fakeAlertStore) ResolveAlert(ctx context.Context, alertID, resolverID string) error {
	if f.resolved == nil {
		f.resolved = map[string]string{}
	}
	f.resolved[alertID] = resolverID
	return nil
}

func (f *fakeAlertStore) ListAlertsByProfile(ctx context.Context, profileID string, limit int) ([]*models.EmergencyAlert, error) {
	out := []*models.EmergencyAlert{}
	for _, a := range f.created {
		if a.ProfileID == profileID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeFanout struct {
	results   []notifier.DeliveryResult
	err       error
	lastActor string
	contacts  []models.EmergencyContact
	calls     int
}

func (f *fakeFanout) NotifyHousehold(ctx context.Context, profile *models.Profile, actorUserID, message string) ([]notifier.DeliveryResult, error) {
	f.calls++
	f.lastActor = actorUserID
	return f.results, f.err
}

func (f *fakeFanout) NotifySOS(ctx context.Context, profile *models.Profile, actorUserID, message string, contacts []models.EmergencyContact) ([]notifier.DeliveryResult, error) {
	f.calls++
	f.lastActor = actorUserID
	f.contacts = contacts
	if f.err != nil {
		return nil, f.err
	}
	// 模拟 fanout 的并集语义：家庭结果 + 联系人逐个投递
	results := append([]notifier.DeliveryResult{}, f.results...)
	for _, c := range contacts {
		results = append(results, notifier.DeliveryResult{Name: c.Name, Phone: c.Phone, Delivered: true})
	}
	return results, nil
}

type pushedEvent struct {
	userID string
	event  string
}

type fakeHub struct {
	pushed []pushedEvent
}

func (f *fakeHub) Push(userID, event string, data interface{}) {
	f.pushed = append(f.pushed, pushedEvent{userID: userID, event: event})
}

func (f *fakeHub) PushMany(userIDs []string, event string, data interface{}) {
	for _, id := range userIDs {
		f.Push(id, event, data)
	}
}

type fakeSenderLookup struct {
	byPhone map[string]*models.Profile
}

func (f *fakeSenderLookup) GetProfileByPhone(ctx context.Context, phone string) (*models.Profile, error) {
	return f.byPhone[phone], nil
}

type fakeLatestReadings struct {
	bp      *models.BPReading
	glucose *models.GlucoseReading
	symptom *models.SymptomReading
}

func (f *fakeLatestReadings) LatestBPReading(ctx context.Context, profileID string) (*models.BPReading, error) {
	return f.bp, nil
}

func (f *fakeLatestReadings) LatestGlucoseReading(ctx context.Context, profileID string) (*models.GlucoseReading, error) {
	return f.glucose, nil
}

func (f *fakeLatestReadings) LatestSymptomReading(ctx context.Context, profileID string) (*models.SymptomReading, error) {
	return f.symptom, nil
}

type passDeduper struct{}

func (passDeduper) Acquire(ctx context.Context, profileID, alertType string, measuredAt time.Time) (bool, error) {
	return true, nil
}

type fakeSettingsStore struct {
	settings map[string]*models.AlertSettings
	updated  *models.AlertSettings
}

func (f *fakeSettingsStore) GetOrCreate(ctx context.Context, profileID string) (*models.AlertSettings, error) {
	if s, ok := f.settings[profileID]; ok {
		return s, nil
	}
	return models.DefaultAlertSettings(profileID), nil
}

func (f *fakeSettingsStore) Update(ctx context.Context, settings *models.AlertSettings) error {
	f.updated = settings
	return nil
}
