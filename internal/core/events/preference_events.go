package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePreferenceChanged    = "preference.changed"
	EventTypePreferencesCommitted = "preferences.committed"
	EventTypePreferencesCloned    = "preferences.cloned"
	EventTypeTokensPurchased      = "tokens.purchased"
)

type PreferenceChangedEvent struct {
	BaseEvent
	UserID    int64   `json:"user_id"`
	DataType  string  `json:"data_type"`
	CompanyID *string `json:"company_id,omitempty"`
	Allowed   bool    `json:"allowed"`
}

func NewPreferenceChangedEvent(userID int64, dataType string, companyID *string, allowed bool) *PreferenceChangedEvent {
	return &PreferenceChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePreferenceChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"data_type":  dataType,
				"company_id": companyID,
				"allowed":    allowed,
			},
		},
		UserID:    userID,
		DataType:  dataType,
		CompanyID: companyID,
		Allowed:   allowed,
	}
}

type PreferencesCommittedEvent struct {
	BaseEvent
	UserID       int64 `json:"user_id"`
	ChangeCount  int   `json:"change_count"`
	TokensSpent  int64 `json:"tokens_spent"`
	BalanceAfter int64 `json:"balance_after"`
}

func NewPreferencesCommittedEvent(userID int64, changeCount int, tokensSpent, balanceAfter int64) *PreferencesCommittedEvent {
	return &PreferencesCommittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePreferencesCommitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":       userID,
				"change_count":  changeCount,
				"tokens_spent":  tokensSpent,
				"balance_after": balanceAfter,
			},
		},
		UserID:       userID,
		ChangeCount:  changeCount,
		TokensSpent:  tokensSpent,
		BalanceAfter: balanceAfter,
	}
}

type PreferencesClonedEvent struct {
	BaseEvent
	UserID          int64  `json:"user_id"`
	SourceID        string `json:"source_id"`
	TargetCompanyID string `json:"target_company_id"`
	ClonedCount     int    `json:"cloned_count"`
}

func NewPreferencesClonedEvent(userID int64, sourceID, targetCompanyID string, clonedCount int) *PreferencesClonedEvent {
	return &PreferencesClonedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePreferencesCloned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":           userID,
				"source_id":         sourceID,
				"target_company_id": targetCompanyID,
				"cloned_count":      clonedCount,
			},
		},
		UserID:          userID,
		SourceID:        sourceID,
		TargetCompanyID: targetCompanyID,
		ClonedCount:     clonedCount,
	}
}

type TokensPurchasedEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	PackageID    string `json:"package_id"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balance_after"`
}

func NewTokensPurchasedEvent(userID int64, packageID string, amount, balanceAfter int64) *TokensPurchasedEvent {
	return &TokensPurchasedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTokensPurchased,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":       userID,
				"package_id":    packageID,
				"amount":        amount,
				"balance_after": balanceAfter,
			},
		},
		UserID:       userID,
		PackageID:    packageID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
}
