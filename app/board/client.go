package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client talks to the Monday.com GraphQL API
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

func NewClient(httpClient *http.Client, apiURL, token string) *Client {
	return &Client{
		httpClient: httpClient,
		apiURL:     apiURL,
		token:      token,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute posts a GraphQL query and returns the raw data payload
func (c *Client) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %d %s: %s", resp.StatusCode, resp.Status, string(body))
	}

	var result graphQLResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", result.Errors[0].Message)
	}

	return result.Data, nil
}

// GetBoardInfo retrieves the board's columns and groups
func (c *Client) GetBoardInfo(ctx context.Context, boardID string) (*BoardInfo, error) {
	query := `query ($boardId: [ID!]) {
		boards (ids: $boardId) {
			name
			columns { id title type }
			groups { id title }
		}
	}`

	data, err := c.execute(ctx, query, map[string]any{"boardId": []string{boardID}})
	if err != nil {
		return nil, fmt.Errorf("failed to get board info: %w", err)
	}

	var result struct {
		Boards []struct {
			Name    string   `json:"name"`
			Columns []Column `json:"columns"`
			Groups  []Group  `json:"groups"`
		} `json:"boards"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode board info: %w", err)
	}
	if len(result.Boards) == 0 {
		return nil, fmt.Errorf("board %s not found", boardID)
	}

	b := result.Boards[0]
	return &BoardInfo{
		ID:      boardID,
		Name:    b.Name,
		Columns: b.Columns,
		Groups:  b.Groups,
	}, nil
}

// GetItems retrieves the items on a board with their column text values
func (c *Client) GetItems(ctx context.Context, boardID string) ([]BoardItem, error) {
	query := `query ($boardId: [ID!]) {
		boards (ids: $boardId) {
			items_page (limit: 500) {
				items {
					id
					name
					group { id }
					column_values { id text }
				}
			}
		}
	}`

	data, err := c.execute(ctx, query, map[string]any{"boardId": []string{boardID}})
	if err != nil {
		return nil, fmt.Errorf("failed to get board items: %w", err)
	}

	var result struct {
		Boards []struct {
			ItemsPage struct {
				Items []struct {
					ID    string `json:"id"`
					Name  string `json:"name"`
					Group struct {
						ID string `json:"id"`
					} `json:"group"`
					ColumnValues []struct {
						ID   string `json:"id"`
						Text string `json:"text"`
					} `json:"column_values"`
				} `json:"items"`
			} `json:"items_page"`
		} `json:"boards"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode board items: %w", err)
	}
	if len(result.Boards) == 0 {
		return nil, fmt.Errorf("board %s not found", boardID)
	}

	var items []BoardItem
	for _, raw := range result.Boards[0].ItemsPage.Items {
		item := BoardItem{
			ID:         raw.ID,
			Name:       raw.Name,
			GroupID:    raw.Group.ID,
			ColumnText: make(map[string]string),
		}
		for _, cv := range raw.ColumnValues {
			item.ColumnText[cv.ID] = cv.Text
		}
		items = append(items, item)
	}

	return items, nil
}

// CreateItem creates a board item with the given column values
func (c *Client) CreateItem(ctx context.Context, boardID, groupID, name string, columnValues map[string]any) (string, error) {
	valuesJSON, err := json.Marshal(columnValues)
	if err != nil {
		return "", fmt.Errorf("failed to encode column values: %w", err)
	}

	query := `mutation ($boardId: ID!, $groupId: String!, $itemName: String!, $columnValues: JSON!) {
		create_item (board_id: $boardId, group_id: $groupId, item_name: $itemName, column_values: $columnValues) {
			id
		}
	}`

	data, err := c.execute(ctx, query, map[string]any{
		"boardId":      boardID,
		"groupId":      groupID,
		"itemName":     name,
		"columnValues": string(valuesJSON),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create item: %w", err)
	}

	var result struct {
		CreateItem struct {
			ID string `json:"id"`
		} `json:"create_item"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode create item response: %w", err)
	}

	return result.CreateItem.ID, nil
}

// UpdateItemColumns updates multiple column values on an item
func (c *Client) UpdateItemColumns(ctx context.Context, boardID, itemID string, columnValues map[string]any) error {
	valuesJSON, err := json.Marshal(columnValues)
	if err != nil {
		return fmt.Errorf("failed to encode column values: %w", err)
	}

	query := `mutation ($boardId: ID!, $itemId: ID!, $columnValues: JSON!) {
		change_multiple_column_values (board_id: $boardId, item_id: $itemId, column_values: $columnValues) {
			id
		}
	}`

	_, err = c.execute(ctx, query, map[string]any{
		"boardId":      boardID,
		"itemId":       itemID,
		"columnValues": string(valuesJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to update item columns: %w", err)
	}

	return nil
}

// MoveItemToGroup moves an item to another group
func (c *Client) MoveItemToGroup(ctx context.Context, itemID, groupID string) error {
	query := `mutation ($itemId: ID!, $groupId: String!) {
		move_item_to_group (item_id: $itemId, group_id: $groupId) {
			id
		}
	}`

	_, err := c.execute(ctx, query, map[string]any{
		"itemId":  itemID,
		"groupId": groupID,
	})
	if err != nil {
		return fmt.Errorf("failed to move item to group: %w", err)
	}

	return nil
}

// CreateGroup creates a new group on the board
func (c *Client) CreateGroup(ctx context.Context, boardID, title string) (string, error) {
	query := `mutation ($boardId: ID!, $groupName: String!) {
		create_group (board_id: $boardId, group_name: $groupName) {
			id
		}
	}`

	data, err := c.execute(ctx, query, map[string]any{
		"boardId":   boardID,
		"groupName": title,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create group: %w", err)
	}

	var result struct {
		CreateGroup struct {
			ID string `json:"id"`
		} `json:"create_group"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode create group response: %w", err)
	}

	return result.CreateGroup.ID, nil
}
