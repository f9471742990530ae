package usecase

import (
	"context"
	"time"

	"resume-builder/internal/adapter/repository"
)

type PrivacyInfo struct {
	HasEncryptedData     bool      `json:"has_encrypted_data"`
	EncryptionStatus     string    `json:"encryption_status"`
	EncryptedFields      []string  `json:"encrypted_fields"`
	SensitiveFieldsCount int       `json:"sensitive_fields_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// GDPRRights maps each data-subject right to the route that serves it.
type GDPRRights struct {
	DataExport      string `json:"data_export"`
	DataDeletion    string `json:"data_deletion"`
	DataPortability string `json:"data_portability"`
}

type PrivacyReport struct {
	PrivacyInfo PrivacyInfo `json:"privacy_info"`
	GDPRRights  GDPRRights  `json:"gdpr_rights"`
}

func (s *Service) PrivacyInfo(ctx context.Context, id string) (*PrivacyReport, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	info := PrivacyInfo{
		HasEncryptedData:     s.store.Encrypted(),
		EncryptionStatus:     "disabled",
		EncryptedFields:      []string{},
		SensitiveFieldsCount: len(repository.EncryptedContactFields),
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
	}
	if info.HasEncryptedData {
		info.EncryptionStatus = "enabled"
		for _, f := range repository.EncryptedContactFields {
			info.EncryptedFields = append(info.EncryptedFields, "contact."+f)
		}
	}
	return &PrivacyReport{
		PrivacyInfo: info,
		GDPRRights: GDPRRights{
			DataExport:      "GET /api/export/json/" + id,
			DataDeletion:    "DELETE /api/resumes/" + id,
			DataPortability: "GET /api/export/pdf/" + id,
		},
	}, nil
}

// LocalModeSettings controls how the editor keeps drafts on the device.
type LocalModeSettings struct {
	Enabled             bool  `json:"enabled"`
	EncryptLocalData    bool  `json:"encrypt_local_data"`
	AutoClearAfterHours int   `json:"auto_clear_after_hours"`
	DebounceMillis      int64 `json:"debounce_ms"`
}

const maxAutoClearHours = 24 * 365

func DefaultLocalModeSettings() LocalModeSettings {
	return LocalModeSettings{
		Enabled:             true,
		EncryptLocalData:    true,
		AutoClearAfterHours: 24,
		DebounceMillis:      300,
	}
}

// Validate rejects negative or absurd retention windows. Zero keeps drafts
// until they are cleared explicitly.
func (l LocalModeSettings) Validate() error {
	if l.AutoClearAfterHours < 0 || l.AutoClearAfterHours > maxAutoClearHours {
		return invalid("auto_clear_after_hours must be between 0 and %d", maxAutoClearHours)
	}
	if l.DebounceMillis < 0 {
		return invalid("debounce_ms must not be negative")
	}
	return nil
}

func (l LocalModeSettings) MaxAge() time.Duration {
	return time.Duration(l.AutoClearAfterHours) * time.Hour
}

func (s *Service) LocalMode() LocalModeSettings {
	s.localMu.RLock()
	defer s.localMu.RUnlock()
	return s.local
}

// SetLocalMode stores new settings. A zero debounce keeps the current one.
func (s *Service) SetLocalMode(l LocalModeSettings) (LocalModeSettings, error) {
	if err := l.Validate(); err != nil {
		return LocalModeSettings{}, err
	}
	s.localMu.Lock()
	defer s.localMu.Unlock()
	if l.DebounceMillis == 0 {
		l.DebounceMillis = s.local.DebounceMillis
	}
	s.local = l
	return l, nil
}
