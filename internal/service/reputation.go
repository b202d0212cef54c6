package service

import (
	"context"

	"github.com/google/uuid"

	"supplement-iq/internal/database"
	"supplement-iq/internal/model"
	"supplement-iq/internal/store"
)

// ApprovalReputation 為每次提案被核准時獲得的聲望
const ApprovalReputation = 10

// Reward 描述一次核准帶來的聲望變化
type Reward struct {
	Points   int  `json:"points"`
	Total    int  `json:"total"`
	Promoted bool `json:"promoted"`
	NewBadge bool `json:"new_badge"`
}

// RewardContribution 增加提案者聲望，newcomer 達門檻時晉升為 contributor，
// 並頒發 first_contribution 徽章。需在交易內呼叫。
func RewardContribution(ctx context.Context, q database.Querier, userID uuid.UUID) (Reward, error) {
	total, role, err := store.AddReputation(ctx, q, userID, ApprovalReputation)
	if err != nil {
		return Reward{}, err
	}
	r := Reward{Points: ApprovalReputation, Total: total}

	if role == model.RoleNewcomer && total >= model.PromotionThreshold {
		if err := store.UpdateUserRole(ctx, q, userID, model.RoleContributor); err != nil {
			return Reward{}, err
		}
		r.Promoted = true
	}

	if r.NewBadge, err = store.AwardBadge(ctx, q, userID, model.BadgeFirstContribution); err != nil {
		return Reward{}, err
	}
	return r, nil
}
