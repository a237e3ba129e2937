package actions

import "realmwalk/server/models"

// Idle does nothing and is always finished
type Idle struct{}

func (Idle) Kind() Kind                  { return KindIdle }
func (Idle) IsFinished() bool            { return true }
func (Idle) RequestInterrupt() bool      { return true }
func (Idle) IsInterruptable() bool       { return true }
func (Idle) Execute(*models.Agent, Grid) {}
func (Idle) sealed()                     {}
