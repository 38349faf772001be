package service

import (
	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/panel"
)

// PanelOpen reports whether viewer has the artifact's panel expanded.
func (s *Service) PanelOpen(viewer string, id uuid.UUID) bool {
	return panel.For(s.panels, viewer, id.String()).Open()
}

// TogglePanel flips the artifact's panel for viewer and returns the new state.
func (s *Service) TogglePanel(viewer string, id uuid.UUID) bool {
	return panel.For(s.panels, viewer, id.String()).Toggle()
}

// SetPanel opens or closes the artifact's panel for viewer.
func (s *Service) SetPanel(viewer string, id uuid.UUID, open bool) {
	panel.For(s.panels, viewer, id.String()).SetOpen(open)
}
