package engine

import (
	"fmt"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// DetermineStage 根据剧情标记推导当前任务阶段
func DetermineStage(s *state.GameState) string {
	switch {
	case !s.Flags["met_old_man"]:
		return content.StageAwakening
	case !s.Flags["frog_defeated"]:
		return content.StageSwampSecret
	case !s.Flags["dragon_defeated"]:
		return content.StageMountainFlame
	case !s.Flags["goblin_army_defeated"] && !s.Flags["goblin_pass_granted"]:
		return content.StageCastleRoad
	case !s.Flags["makor_defeated"]:
		return content.StageBlackHall
	case !s.Flags["onyx_witch_defeated"]:
		return content.StageWitchBane
	case !s.Flags["elle_cleansed"]:
		return content.StageRescueElle
	}
	return content.StageHomecoming
}

// checkAndAdvanceQuest 按标记推进任务阶段，返回阶段更新消息
func (e *Engine) checkAndAdvanceQuest(s *state.GameState) []string {
	newStage := DetermineStage(s)
	if newStage == s.QuestStage {
		return nil
	}

	s.QuestStage = newStage
	stage := content.QuestStages[newStage]
	messages := []string{
		fmt.Sprintf("Quest updated: %s", stage.Title),
		stage.Description,
	}

	if newStage == content.StageHomecoming {
		s.Victory = true
	}
	return messages
}

// CurrentObjective 当前任务阶段元数据
func (e *Engine) CurrentObjective(s *state.GameState) *content.QuestStage {
	if stage, ok := content.QuestStages[s.QuestStage]; ok {
		return stage
	}
	return content.QuestStages[content.StageAwakening]
}
