package actions

import "lizard-state/internal/domain"

// WaitAction пропускает раунд и восстанавливает единицу энергии.
type WaitAction struct{}

func (WaitAction) ActionName() string { return NameWait }

func (WaitAction) Command(f *domain.Floor, subject domain.EntityID) domain.Command {
	return domain.CommandFunc(func() domain.FloorUpdate {
		actor := f.MustEntity(subject)
		rested := actor.WithState(domain.OkState(nextRound(actor) + 1))
		rested.Energy = min(rested.Energy+1, rested.MaxEnergy)
		return f.UpdateEntity(rested)
	})
}
