// Package progression holds the step definitions for the milestone
// progression features.
package progression

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	POST(path, asUser string, body any) error
	GET(path string) error
	LastStatus() int
	LastForestID() int
	LastMilestoneID() int
	LastField(key string) any
	RequireSuccess() error
	RequireError(code string) error
}

// RegisterSteps wires the progression step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &progressionSteps{tc: tc}

	ctx.Step(`^the server is running$`, steps.serverRunning)
	ctx.Step(`^"([^"]*)" registers with name "([^"]*)" and role (\d+)$`, steps.register)
	ctx.Step(`^"([^"]*)" creates a "([^"]*)" relationship to "([^"]*)"$`, steps.createRelationship)
	ctx.Step(`^"([^"]*)" creates a forest named "([^"]*)"$`, steps.createForest)
	ctx.Step(`^the forest id is (\d+)$`, steps.forestIDIs)
	ctx.Step(`^"([^"]*)" creates a milestone "([^"]*)" in forest (\d+) with difficulty (\d+) and parent (\d+)$`, steps.createMilestoneWithParent)
	ctx.Step(`^"([^"]*)" creates a milestone "([^"]*)" in forest (\d+) with difficulty (\d+)$`, steps.createMilestone)
	ctx.Step(`^"([^"]*)" creates a milestone "([^"]*)" in the last forest with difficulty (\d+)$`, steps.createMilestoneInLastForest)
	ctx.Step(`^the milestone id is (\d+)$`, steps.milestoneIDIs)
	ctx.Step(`^"([^"]*)" adds prerequisite (\d+) to milestone (\d+)$`, steps.addPrerequisite)
	ctx.Step(`^"([^"]*)" self-completes milestone (\d+)$`, steps.selfComplete)
	ctx.Step(`^"([^"]*)" self-completes the last milestone$`, steps.selfCompleteLast)
	ctx.Step(`^the request succeeds$`, steps.requestSucceeds)
	ctx.Step(`^the request fails with "([^"]*)"$`, steps.requestFailsWith)
	ctx.Step(`^milestone (\d+) is completed by "([^"]*)"$`, steps.milestoneCompletedBy)
}

type progressionSteps struct {
	tc TestContext
}

func (s *progressionSteps) serverRunning() error {
	if err := s.tc.GET("/healthz"); err != nil {
		return err
	}
	return s.tc.RequireSuccess()
}

func (s *progressionSteps) register(user, name string, role int) error {
	return s.tc.POST("/users/register", user, map[string]any{"name": name, "role": role})
}

func (s *progressionSteps) createRelationship(guardian, kind, child string) error {
	return s.tc.POST("/relationships", guardian, map[string]any{"child_id": child, "kind": kind})
}

func (s *progressionSteps) createForest(user, name string) error {
	return s.tc.POST("/forests", user, map[string]any{"name": name})
}

func (s *progressionSteps) forestIDIs(id int) error {
	if got := s.tc.LastForestID(); got != id {
		return fmt.Errorf("expected forest id %d, got %d", id, got)
	}
	return nil
}

func (s *progressionSteps) createMilestone(user, title string, forest, difficulty int) error {
	return s.tc.POST("/milestones", user, map[string]any{
		"title": title, "forest_id": forest, "difficulty": difficulty,
	})
}

func (s *progressionSteps) createMilestoneWithParent(user, title string, forest, difficulty, parent int) error {
	return s.tc.POST("/milestones", user, map[string]any{
		"title": title, "forest_id": forest, "difficulty": difficulty, "parent_id": parent,
	})
}

func (s *progressionSteps) createMilestoneInLastForest(user, title string, difficulty int) error {
	return s.createMilestone(user, title, s.tc.LastForestID(), difficulty)
}

func (s *progressionSteps) milestoneIDIs(id int) error {
	if got := s.tc.LastMilestoneID(); got != id {
		return fmt.Errorf("expected milestone id %d, got %d", id, got)
	}
	return nil
}

func (s *progressionSteps) addPrerequisite(user string, prerequisite, milestone int) error {
	if err := s.tc.POST(fmt.Sprintf("/milestones/%d/prerequisites", milestone), user, map[string]any{
		"prerequisite_id": prerequisite,
	}); err != nil {
		return err
	}
	return s.tc.RequireSuccess()
}

func (s *progressionSteps) selfComplete(user string, milestone int) error {
	return s.tc.POST(fmt.Sprintf("/milestones/%d/completions/self", milestone), user, map[string]any{})
}

func (s *progressionSteps) selfCompleteLast(user string) error {
	return s.selfComplete(user, s.tc.LastMilestoneID())
}

func (s *progressionSteps) requestSucceeds() error {
	return s.tc.RequireSuccess()
}

func (s *progressionSteps) requestFailsWith(code string) error {
	return s.tc.RequireError(code)
}

func (s *progressionSteps) milestoneCompletedBy(milestone int, user string) error {
	if err := s.tc.GET(fmt.Sprintf("/milestones/%d/completions/%s", milestone, user)); err != nil {
		return err
	}
	return s.tc.RequireSuccess()
}
