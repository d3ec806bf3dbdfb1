package storage

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"taskly-api/domain"
)

type seedSubTask struct {
	desc string
	done bool
}

type seedTask struct {
	title string
	desc  string
	subs  []seedSubTask
}

type seedStatus struct {
	name  string
	tasks []seedTask
}

type seedBoard struct {
	name     string
	desc     string
	statuses []seedStatus
}

var demoBoards = []seedBoard{
	{
		name: "Mobile App Redesign",
		desc: "Q1 initiative to modernize the iOS and Android apps",
		statuses: []seedStatus{
			{name: "Backlog", tasks: []seedTask{
				{title: "Add dark mode support", desc: "Implement system-aware dark mode with manual toggle option"},
				{title: "Optimize image loading", desc: "Implement lazy loading and WebP format for faster load times"},
				{title: "Add push notification preferences"},
			}},
			{name: "In Progress", tasks: []seedTask{
				{title: "Implement biometric authentication", desc: "Add Face ID and fingerprint login options for faster access", subs: []seedSubTask{
					{"Research iOS Face ID API", true},
					{"Research Android fingerprint API", true},
					{"Implement iOS biometric flow", false},
					{"Implement Android biometric flow", false},
					{"Add fallback to PIN entry", false},
				}},
			}},
			{name: "In Review", tasks: []seedTask{
				{title: "Redesign onboarding flow", desc: "Simplify the 7-step onboarding to 3 steps with progress indicator", subs: []seedSubTask{
					{"Create new wireframes", true},
					{"Get design approval", true},
					{"Implement UI components", true},
					{"Write unit tests", false},
				}},
			}},
			{name: "Done", tasks: []seedTask{
				{title: "Update app icons and splash screen", desc: "New branding assets from marketing team"},
				{title: "Migrate to React Native 0.73"},
			}},
		},
	},
	{
		name: "Marketing Website",
		desc: "Company website refresh and SEO improvements",
		statuses: []seedStatus{
			{name: "To Do", tasks: []seedTask{
				{title: "Add customer testimonials section", desc: "Carousel with quotes, photos, and company logos"},
				{title: "Implement site search", desc: "Algolia-powered search across docs and blog"},
				{title: "Create careers page"},
			}},
			{name: "Doing", tasks: []seedTask{
				{title: "Build new pricing page", desc: "Interactive pricing calculator with feature comparison table", subs: []seedSubTask{
					{"Design pricing tiers layout", true},
					{"Build comparison table component", true},
					{"Implement pricing calculator", false},
					{"Add Stripe checkout integration", false},
				}},
			}},
			{name: "QA", tasks: []seedTask{
				{title: "Migrate blog to new CMS", desc: "Move 50+ articles from WordPress to Sanity", subs: []seedSubTask{
					{"Set up Sanity schema", true},
					{"Write migration script", true},
					{"Migrate all posts", true},
					{"Verify redirects working", false},
					{"Update internal links", false},
				}},
			}},
			{name: "Complete", tasks: []seedTask{
				{title: "Redesign homepage hero", desc: "New animated hero with product demo video"},
				{title: "Fix mobile navigation menu"},
				{title: "Add cookie consent banner"},
			}},
		},
	},
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Seed replaces the contents of st with the demo boards. Deleting each board
// clears its subtree by cascade.
func Seed(ctx context.Context, st domain.Store) error {
	boards := domain.NewBoardService(st)
	statuses := domain.NewStatusService(st)
	tasks := domain.NewTaskService(st)
	subTasks := domain.NewSubTaskService(st)

	existing, err := boards.List(ctx)
	if err != nil {
		return fmt.Errorf("list boards: %w", err)
	}
	for _, b := range existing {
		if err := boards.Delete(ctx, b.ID); err != nil {
			return fmt.Errorf("clear board %s: %w", b.ID, err)
		}
	}

	for _, sb := range demoBoards {
		b, err := boards.Create(ctx, domain.CreateBoardInput{Name: sb.name, Description: optional(sb.desc)})
		if err != nil {
			return fmt.Errorf("create board %q: %w", sb.name, err)
		}
		for pos, ss := range sb.statuses {
			status, err := statuses.Create(ctx, b.ID, domain.CreateStatusInput{Name: ss.name, Position: pos})
			if err != nil {
				return fmt.Errorf("create status %q: %w", ss.name, err)
			}
			for tpos, stk := range ss.tasks {
				t, err := tasks.Create(ctx, domain.CreateTaskInput{
					BoardStatusID: status.ID,
					Title:         stk.title,
					Description:   optional(stk.desc),
					Position:      tpos,
				})
				if err != nil {
					return fmt.Errorf("create task %q: %w", stk.title, err)
				}
				for _, sub := range stk.subs {
					done := sub.done
					if _, err := subTasks.Create(ctx, domain.CreateSubTaskInput{TaskID: t.ID, Description: sub.desc, IsCompleted: &done}); err != nil {
						return fmt.Errorf("create subtask %q: %w", sub.desc, err)
					}
				}
			}
		}
		log.WithFields(log.Fields{"board": b.ID, "name": b.Name}).Info("seeded board")
	}
	return nil
}
