package service

import (
	"context"
	"testing"

	"carelink-alert/internal/models"
	"carelink-alert/internal/notifier"
	"carelink-alert/internal/presence"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sosFixture struct {
	profile  *models.Profile
	alerts   *fakeAlertStore
	fanout   *fakeFanout
	hub      *fakeHub
	settings *fakeSettingsProvider
	service  *AlertService
}

func newSOSFixture(t *testing.T) *sosFixture {
	t.Helper()

	profile := &models.Profile{
		ProfileID:   uuid.New().String(),
		UserID:      uuid.New().String(),
		Name:        "Grandma Liu",
		Role:        models.RoleDependent,
		HouseholdID: uuid.New().String(),
	}

	alerts := &fakeAlertStore{}
	fanout := &fakeFanout{}
	hub := &fakeHub{}
	settings := &fakeSettingsProvider{settings: map[string]*models.AlertSettings{}}
	profiles := &fakeProfileDirectory{profiles: map[string]*models.Profile{profile.ProfileID: profile}}

	service := NewAlertService(alerts, profiles, settings, fanout, hub, zap.NewNop())

	return &sosFixture{
		profile:  profile,
		alerts:   alerts,
		fanout:   fanout,
		hub:      hub,
		settings: settings,
		service:  service,
	}
}

func TestTriggerSOS_NotifiesCaregiversAndContacts(t *testing.T) {
	f := newSOSFixture(t)

	// 两个 caregiver + 一个紧急联系人 → notified_count == 3
	f.fanout.results = []notifier.DeliveryResult{
		{UserID: uuid.New().String(), Phone: "+15550000001", Delivered: true},
		{UserID: uuid.New().String(), Phone: "+15550000002", Delivered: true},
	}
	withContact := models.DefaultAlertSettings(f.profile.ProfileID)
	withContact.EmergencyContacts = []models.EmergencyContact{
		{Name: "Dr. Lee", Phone: "+15551112222"},
	}
	f.settings.settings = map[string]*models.AlertSettings{f.profile.ProfileID: withContact}

	result, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, result.NotifiedCount)
	require.Len(t, f.alerts.created, 1)
	assert.Equal(t, models.AlertTypeSOS, f.alerts.created[0].AlertType)
	require.Len(t, f.fanout.contacts, 1)
	assert.Equal(t, "Dr. Lee", f.fanout.contacts[0].Name)
}

func TestTriggerSOS_CountsRecipientsDespiteDeliveryFailure(t *testing.T) {
	f := newSOSFixture(t)

	// 其中一条投递失败，notified_count 仍按接收人数统计
	f.fanout.results = []notifier.DeliveryResult{
		{UserID: uuid.New().String(), Phone: "+15550000001", Delivered: true},
		{UserID: uuid.New().String(), Phone: "+15550000002", Delivered: false, Error: "gateway unavailable"},
		{Name: "Dr. Lee", Phone: "+15551112222", Delivered: true},
	}

	result, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, result.NotifiedCount)
	require.Len(t, result.Notifications, 3)
	assert.False(t, result.Notifications[1].Delivered)
}

func TestTriggerSOS_IncludesLocationInMessage(t *testing.T) {
	f := newSOSFixture(t)

	lat, lng := 52.37, 4.89
	result, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", &lat, &lng)

	require.NoError(t, err)
	assert.Contains(t, result.Alert.Message, "maps.google.com")
	require.NotNil(t, result.Alert.Latitude)
	assert.Equal(t, 52.37, *result.Alert.Latitude)
}

func TestTriggerSOS_CustomMessage(t *testing.T) {
	f := newSOSFixture(t)

	result, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "fell in the bathroom", nil, nil)

	require.NoError(t, err)
	assert.Contains(t, result.Alert.Message, "fell in the bathroom")
	assert.Contains(t, result.Alert.Message, "Grandma Liu")
}

func TestTriggerSOS_PushesToOnlineRecipients(t *testing.T) {
	f := newSOSFixture(t)

	caregiverID := uuid.New().String()
	f.fanout.results = []notifier.DeliveryResult{
		{UserID: caregiverID, Phone: "+15550000001", Delivered: true},
	}

	_, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", nil, nil)

	require.NoError(t, err)
	require.Len(t, f.hub.pushed, 1)
	assert.Equal(t, caregiverID, f.hub.pushed[0].userID)
	assert.Equal(t, presence.EventNewNotification, f.hub.pushed[0].event)
}

func TestTriggerSOS_EveryTriggerCreatesAlert(t *testing.T) {
	f := newSOSFixture(t)

	_, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", nil, nil)
	require.NoError(t, err)
	_, err = f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", nil, nil)
	require.NoError(t, err)

	// SOS 是显式求救，不做幂等抑制
	assert.Len(t, f.alerts.created, 2)
}

func TestTriggerSOS_NotificationFailureKeepsAlert(t *testing.T) {
	f := newSOSFixture(t)
	f.fanout.err = assert.AnError

	result, err := f.service.TriggerSOS(context.Background(), f.profile.ProfileID, f.profile.UserID, "", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, result.NotifiedCount)
	require.Len(t, f.alerts.created, 1)
}

func TestTriggerSOS_UnknownProfile(t *testing.T) {
	f := newSOSFixture(t)

	_, err := f.service.TriggerSOS(context.Background(), uuid.New().String(), "", "", nil, nil)

	assert.Error(t, err)
}

func TestResolveAlert_Delegates(t *testing.T) {
	f := newSOSFixture(t)
	alertID := uuid.New().String()
	resolverID := uuid.New().String()

	err := f.service.Resolve(context.Background(), alertID, resolverID)

	require.NoError(t, err)
	assert.Equal(t, resolverID, f.alerts.resolved[alertID])
}
