package models

import "fmt"

// SystemSettings holds the default fee and transaction limits
type SystemSettings struct {
	WithdrawalMinLimit    float64 `json:"withdrawalMinLimit" example:"10"`
	WithdrawalMaxLimit    float64 `json:"withdrawalMaxLimit" example:"10000"`
	SendMinLimit          float64 `json:"sendMinLimit" example:"1"`
	SendMaxLimit          float64 `json:"sendMaxLimit" example:"5000"`
	DefaultTransactionFee float64 `json:"defaultTransactionFee" example:"2.5"`
	IsPercentageFee       bool    `json:"isPercentageFee" example:"true"`
}

func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		WithdrawalMinLimit:    10,
		WithdrawalMaxLimit:    10000,
		SendMinLimit:          1,
		SendMaxLimit:          5000,
		DefaultTransactionFee: 2.5,
		IsPercentageFee:       true,
	}
}

func (s SystemSettings) Validate() error {
	switch {
	case s.WithdrawalMinLimit < 0 || s.WithdrawalMaxLimit < 0 || s.SendMinLimit < 0 || s.SendMaxLimit < 0:
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidSettings)
	case s.WithdrawalMinLimit > s.WithdrawalMaxLimit:
		return fmt.Errorf("%w: withdrawal min exceeds max", ErrInvalidSettings)
	case s.SendMinLimit > s.SendMaxLimit:
		return fmt.Errorf("%w: send min exceeds max", ErrInvalidSettings)
	case s.DefaultTransactionFee < 0:
		return fmt.Errorf("%w: fee must not be negative", ErrInvalidSettings)
	case s.IsPercentageFee && s.DefaultTransactionFee > 100:
		return fmt.Errorf("%w: percentage fee above 100", ErrInvalidSettings)
	}
	return nil
}

// SettingsPatch is a partial update; nil fields keep their current value.
type SettingsPatch struct {
	WithdrawalMinLimit    *float64 `json:"withdrawalMinLimit,omitempty"`
	WithdrawalMaxLimit    *float64 `json:"withdrawalMaxLimit,omitempty"`
	SendMinLimit          *float64 `json:"sendMinLimit,omitempty"`
	SendMaxLimit          *float64 `json:"sendMaxLimit,omitempty"`
	DefaultTransactionFee *float64 `json:"defaultTransactionFee,omitempty"`
	IsPercentageFee       *bool    `json:"isPercentageFee,omitempty"`
}

func (p SettingsPatch) Apply(s SystemSettings) SystemSettings {
	if p.WithdrawalMinLimit != nil {
		s.WithdrawalMinLimit = *p.WithdrawalMinLimit
	}
	if p.WithdrawalMaxLimit != nil {
		s.WithdrawalMaxLimit = *p.WithdrawalMaxLimit
	}
	if p.SendMinLimit != nil {
		s.SendMinLimit = *p.SendMinLimit
	}
	if p.SendMaxLimit != nil {
		s.SendMaxLimit = *p.SendMaxLimit
	}
	if p.DefaultTransactionFee != nil {
		s.DefaultTransactionFee = *p.DefaultTransactionFee
	}
	if p.IsPercentageFee != nil {
		s.IsPercentageFee = *p.IsPercentageFee
	}
	return s
}
