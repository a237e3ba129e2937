package actions

import (
	"log"

	"realmwalk/server/models"
)

// cellSixteenths is the distance across one cell in offset units
const cellSixteenths = 16.0

// glide interpolates an agent's sub-tile offset from its starting value back
// to zero. The agent already occupies the destination cell; the offset is the
// distance it still has to travel into it.
type glide struct {
	startX, startY float64
	travelled      float64
}

// begin sets the starting offset on the agent
func (gl *glide) begin(agent *models.Agent, offsetX, offsetY float64) {
	gl.startX = offsetX
	gl.startY = offsetY
	gl.travelled = 0
	agent.OffsetX = offsetX
	agent.OffsetY = offsetY
}

// advance moves the agent one tick along and reports whether it has arrived.
// On arrival the offset is exactly zero.
func (gl *glide) advance(agent *models.Agent) bool {
	gl.travelled += agent.Speed * 16.0 / 32.0
	if gl.travelled >= cellSixteenths {
		agent.ResetOffset()
		return true
	}
	remaining := (cellSixteenths - gl.travelled) / cellSixteenths
	agent.OffsetX = gl.startX * remaining
	agent.OffsetY = gl.startY * remaining
	return false
}

// visualOffset returns the starting offset for a move by (dx, dy, dz).
// Elevation is drawn as screen rows, so z contributes to the y offset.
func visualOffset(dx, dy, dz int) (float64, float64) {
	return -cellSixteenths * float64(dx), -cellSixteenths * float64(dy+dz)
}

// removePlaceholder clears the marker a step inserted, checking that the cell
// still holds it.
func removePlaceholder(g Grid, marker *models.Placeholder) {
	if marker == nil {
		return
	}
	if occ := g.OccupantAt(marker.Pos); occ != models.Occupant(marker) {
		log.Printf("Placeholder for %s at %s is missing", marker.Owner.ID, marker.Pos)
		return
	}
	g.RemoveOccupantAt(marker.Pos)
}

// insertPlaceholder covers the vacated cell; a refused insert is logged and
// the step continues without a marker.
func insertPlaceholder(agent *models.Agent, g Grid, at models.Position, transparent bool) *models.Placeholder {
	marker := models.NewPlaceholder(agent, at, transparent)
	if err := g.AddTransientOccupant(marker); err != nil {
		log.Printf("Agent %s could not hold %s: %v", agent.ID, at, err)
		return nil
	}
	return marker
}
