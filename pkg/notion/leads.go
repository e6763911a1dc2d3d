package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Lead queue page statuses.
const (
	StatusQueued   = "Queued"
	StatusEnriched = "Enriched"
	StatusFailed   = "Failed"
)

// QueryAll fetches all pages from a Notion database, handling pagination.
// Rate limiting is enforced by the Client (3 req/s by default).
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		req = &notionapi.DatabaseQueryRequest{StartCursor: resp.NextCursor}
		if filter != nil {
			req.Filter = filter.Filter
			req.Sorts = filter.Sorts
			req.PageSize = filter.PageSize
		}
	}

	return all, nil
}

// QueryQueuedLeads fetches all pages with Status = "Queued" from the given
// lead database.
func QueryQueuedLeads(ctx context.Context, c Client, dbID string) ([]notionapi.Page, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status: &notionapi.StatusFilterCondition{
				Equals: StatusQueued,
			},
		},
	}
	pages, err := QueryAll(ctx, c, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "notion: query queued leads")
	}
	return pages, nil
}

// UpdateLeadStatus sets the lead page's Status and, when email is non-empty,
// writes the resolved email back to the page.
func UpdateLeadStatus(ctx context.Context, c Client, pageID, status, email string) error {
	now := notionapi.Date(time.Now())
	props := notionapi.Properties{
		"Status": notionapi.StatusProperty{
			Status: notionapi.Status{Name: status},
		},
		"Last Enriched": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &now},
		},
	}
	if email != "" {
		props["Email"] = notionapi.EmailProperty{Email: email}
	}

	_, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props})
	if err != nil {
		return eris.Wrapf(err, "notion: update lead %s to %s", pageID, status)
	}
	return nil
}
