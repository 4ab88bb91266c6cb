package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (f FrameMessage) Validate() error {
	if f.Frame < 1 {
		return errors.New("frame must be positive")
	}
	return nil
}

func (p CreateUnitPayload) Validate() error {
	if p.UnitType == 0 {
		return errors.New("unitType is required")
	}
	return nil
}

func (p MoveUnitPayload) Validate() error {
	if len(p.Units) == 0 {
		return errors.New("units must not be empty")
	}
	for _, id := range p.Units {
		if id.IsNil() {
			return errors.New("unit id cannot be nil")
		}
	}
	return nil
}

func (p AttackUnitPayload) Validate() error {
	if p.Attacker.IsNil() || p.Target.IsNil() {
		return errors.New("attacker and target are required")
	}
	if p.Attacker == p.Target {
		return errors.New("unit cannot attack itself")
	}
	return nil
}

func (p SellUnitPayload) Validate() error {
	if p.Unit.IsNil() {
		return errors.New("unit is required")
	}
	return nil
}

func (p JoinCampPayload) Validate() error {
	if p.Credits < 0 {
		return errors.New("credits cannot be negative")
	}
	return nil
}

func (p ConfirmPayload) Validate() error {
	if p.Frame < 1 {
		return errors.New("frame must be positive")
	}
	return nil
}
