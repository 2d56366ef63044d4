package service

import (
	"fmt"
	"strconv"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/output"
)

// ProjectService provides project, engagement and comment operations
type ProjectService struct{}

// NewProjectService creates a new project service
func NewProjectService() *ProjectService {
	return &ProjectService{}
}

// Show prints a project
func (ps *ProjectService) Show(id string) error {
	p, err := api.GetProject(id)
	if err != nil {
		return err
	}

	category := "-"
	if p.Category != nil {
		category = p.Category.Name
	}
	fields := []output.Field{
		{Label: "ID", Value: p.ID},
		{Label: "Owner", Value: handle(p.Owner)},
		{Label: "Category", Value: category},
		{Label: "Media", Value: fmt.Sprintf("%s %s", p.MediaType, p.MediaURL)},
		{Label: "Tags", Value: joinOrDash(p.Tags)},
		{Label: "Description", Value: orDash(p.Description)},
		{Label: "Likes", Value: p.LikeCount},
		{Label: "Saves", Value: p.SaveCount},
		{Label: "Comments", Value: p.CommentCount},
		{Label: "Views", Value: p.ViewCount},
		{Label: "Created", Value: formatTime(p.CreatedAt)},
	}
	if p.IsLiked != nil {
		fields = append(fields, output.Field{Label: "Liked by you", Value: *p.IsLiked})
	}
	if p.IsSaved != nil {
		fields = append(fields, output.Field{Label: "Saved by you", Value: *p.IsSaved})
	}
	if !p.IsPublished {
		fields = append(fields, output.Field{Label: "Status", Value: "draft"})
	}
	return output.PrintRecord(p.Title, p, fields)
}

// SetLiked likes or unlikes a project
func (ps *ProjectService) SetLiked(id string, liked bool) error {
	if err := requireLogin(); err != nil {
		return err
	}
	res, err := api.SetLiked(id, liked)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(res)
	}
	verb := "Liked"
	if !liked {
		verb = "Unliked"
	}
	ps.printEngagement(verb, res.Changed, res.LikeCount, "like")
	return nil
}

// SetSaved saves or unsaves a project
func (ps *ProjectService) SetSaved(id string, saved bool) error {
	if err := requireLogin(); err != nil {
		return err
	}
	res, err := api.SetSaved(id, saved)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(res)
	}
	verb := "Saved"
	if !saved {
		verb = "Removed from saved"
	}
	ps.printEngagement(verb, res.Changed, res.SaveCount, "save")
	return nil
}

func (ps *ProjectService) printEngagement(verb string, changed bool, count *int, noun string) {
	if !changed {
		output.PrintInfo("Nothing changed")
		return
	}
	if count != nil {
		output.PrintSuccess("%s (%d %s%s)", verb, *count, noun, pluralize(*count))
		return
	}
	output.PrintSuccess(verb)
}

// ListSaved shows the caller's saved projects
func (ps *ProjectService) ListSaved(limit, offset int) error {
	if err := requireLogin(); err != nil {
		return err
	}
	list, err := api.GetSavedProjects(limit, offset)
	if err != nil {
		return err
	}
	return printProjects(list)
}

// Delete removes one of the caller's projects
func (ps *ProjectService) Delete(id string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	if err := api.DeleteProject(id); err != nil {
		return err
	}
	output.PrintSuccess("Project %s deleted", id)
	return nil
}

// ListComments shows a page of comments, oldest first
func (ps *ProjectService) ListComments(projectID string, limit, offset int) error {
	list, err := api.GetComments(projectID, limit, offset)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list.Comments))
	for _, c := range list.Comments {
		content := output.Truncate(c.Content, 60)
		if c.IsEdited {
			content += " (edited)"
		}
		rows = append(rows, []string{c.ID, handle(c.Author), content, formatTime(c.CreatedAt)})
	}
	if err := output.PrintTable(list, []string{"ID", "AUTHOR", "COMMENT", "POSTED"}, rows); err != nil {
		return err
	}
	printFooter(list.Meta, len(rows))
	return nil
}

// Comment adds a comment to a project
func (ps *ProjectService) Comment(projectID, content string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	c, err := api.CreateComment(projectID, content)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(c)
	}
	output.PrintSuccess("Comment %s posted", c.ID)
	return nil
}

// DeleteComment removes one of the caller's comments
func (ps *ProjectService) DeleteComment(id string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	if err := api.DeleteComment(id); err != nil {
		return err
	}
	output.PrintSuccess("Comment %s deleted", id)
	return nil
}

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}
