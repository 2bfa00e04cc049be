package server

import (
	"log/slog"
	"time"

	"github.com/friendskids/friendskids/internal/config"
	"github.com/friendskids/friendskids/internal/engine"
	"github.com/friendskids/friendskids/internal/i18n"
	"github.com/friendskids/friendskids/internal/models"
)

// kidView is an annotated kid with its localized labels.
type kidView struct {
	engine.Annotated
	Countdown      string `json:"countdown"`
	Turning        string `json:"turning"`
	MilestoneLabel string `json:"milestone_label,omitempty"`
}

func newKidViews(list []engine.Annotated, l *i18n.Localizer) []kidView {
	out := make([]kidView, 0, len(list))
	for _, a := range list {
		v := kidView{
			Annotated: a,
			Countdown: l.Countdown(a.Projection.DaysUntil),
			Turning:   l.Turning(a.Projection.AgeAtNext),
		}
		if a.Projection.IsMilestone {
			v.MilestoneLabel = l.Msg(config.TKeyMilestone)
		}
		out = append(out, v)
	}
	return out
}

// pregnancyView adds the signed day count to the due date.
type pregnancyView struct {
	models.PregnancyWithFriend
	DaysUntilDue int    `json:"days_until_due"`
	DueLabel     string `json:"due_label"`
}

func newPregnancyViews(list []models.PregnancyWithFriend, now time.Time, l *i18n.Localizer) []pregnancyView {
	out := make([]pregnancyView, 0, len(list))
	for _, p := range list {
		days, err := engine.DaysUntilDate(p.DueDate, now)
		if err != nil {
			slog.Warn(config.MsgSkippedPreg,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyValue, p.DueDate,
			)
			continue
		}
		out = append(out, pregnancyView{
			PregnancyWithFriend: p,
			DaysUntilDue:        days,
			DueLabel:            l.DueIn(days),
		})
	}
	return out
}

type stats struct {
	TotalFriends int `json:"total_friends"`
	TotalKids    int `json:"total_kids"`
}

type dashboardResponse struct {
	Upcoming    []kidView       `json:"upcoming"`
	Stats       stats           `json:"stats"`
	Pregnancies []pregnancyView `json:"pregnancies"`
	Filter      engine.Filter   `json:"filter"`
	Search      string          `json:"search,omitempty"`
	EmptyLabel  string          `json:"empty_label,omitempty"`
}

type friendItem struct {
	models.Friend
	KidCount int `json:"kid_count"`
}

type friendDetail struct {
	Friend models.Friend `json:"friend"`
	Kids   []kidView     `json:"kids"`
}
