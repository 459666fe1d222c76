package viewmodel

import (
	"sync"

	"github.com/tgienger/taskpilot/internal/models"
	"github.com/tgienger/taskpilot/internal/notify"
	"github.com/tgienger/taskpilot/internal/store"
)

// ProfileView mirrors the current user and settings, and mediates the
// permission-gated notifications toggle.
type ProfileView struct {
	mu       sync.Mutex
	current  models.UserProfile
	settings models.AppSettings

	userStore *store.UserStore
	notifier  notify.Notifier
}

// NewProfileView subscribes to the user store and captures the initial
// state.
func NewProfileView(userStore *store.UserStore, notifier notify.Notifier) *ProfileView {
	v := &ProfileView{
		userStore: userStore,
		notifier:  notifier,
	}
	userStore.SubscribeCurrentUser(func(current models.UserProfile) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.current = current
	})
	userStore.SubscribeSettings(func(settings models.AppSettings) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.settings = settings
	})
	return v
}

// CurrentUser returns the mirrored current profile.
func (v *ProfileView) CurrentUser() models.UserProfile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Settings returns the mirrored settings.
func (v *ProfileView) Settings() models.AppSettings {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settings
}

// HasNotificationPermission reports the collaborator's permission state.
func (v *ProfileView) HasNotificationPermission() bool {
	return v.notifier.HasPermission()
}

// SaveProfile replaces the current user's profile.
func (v *ProfileView) SaveProfile(profile models.UserProfile) {
	v.userStore.SaveUser(profile)
}

// ToggleNotifications writes the flag immediately. Enabling without
// permission requests it asynchronously; on denial the flag is reverted
// against the latest settings at callback time, so concurrent edits to other
// fields are not clobbered. A request that never resolves leaves the flag
// optimistically enabled.
func (v *ProfileView) ToggleNotifications(enabled bool) {
	settings := v.userStore.Settings()
	settings.NotificationsEnabled = enabled
	v.userStore.UpdateSettings(settings)

	if enabled && !v.notifier.HasPermission() {
		v.notifier.RequestPermission(func(granted bool) {
			if granted {
				return
			}
			reverted := v.userStore.Settings()
			reverted.NotificationsEnabled = false
			v.userStore.UpdateSettings(reverted)
		})
	}
}

// SetWorkflowStyle overwrites the preferred workflow.
func (v *ProfileView) SetWorkflowStyle(style models.WorkflowStyle) {
	settings := v.userStore.Settings()
	settings.PreferredWorkflow = style
	v.userStore.UpdateSettings(settings)
}

// CompleteOnboarding marks onboarding as finished.
func (v *ProfileView) CompleteOnboarding() {
	settings := v.userStore.Settings()
	settings.OnboardingCompleted = true
	v.userStore.UpdateSettings(settings)
}

// ResetOnboarding clears the onboarding flag.
func (v *ProfileView) ResetOnboarding() {
	settings := v.userStore.Settings()
	settings.OnboardingCompleted = false
	v.userStore.UpdateSettings(settings)
}
