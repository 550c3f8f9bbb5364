package server

import (
	"context"

	"salvagedb/pkg/inventory"
	"salvagedb/pkg/models"
)

type updateCall struct {
	owner   string
	uid     string
	partial map[string]any
}

type deleteCall struct {
	owner string
	uid   string
}

// mockInventory records calls and serves canned results.
type mockInventory struct {
	submissions  []inventory.Submission
	submitResult *inventory.SubmitResult
	submitErr    error

	updates   []updateCall
	updateErr error

	deletes   []deleteCall
	deleteErr error

	table       *models.Table
	listErr     error
	listColumns []string
}

func newMockInventory() *mockInventory {
	return &mockInventory{
		submitResult: &inventory.SubmitResult{UID: "uid-1", NextUID: "uid-2"},
		table:        &models.Table{Columns: []string{}, Rows: [][]any{}},
	}
}

func (m *mockInventory) Submit(_ context.Context, sub inventory.Submission) (*inventory.SubmitResult, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submissions = append(m.submissions, sub)
	return m.submitResult, nil
}

func (m *mockInventory) UpdateItem(_ context.Context, ownerID, uid string, partial map[string]any) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updateCall{owner: ownerID, uid: uid, partial: partial})
	return nil
}

func (m *mockInventory) DeleteItem(_ context.Context, ownerID, uid string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, deleteCall{owner: ownerID, uid: uid})
	return nil
}

func (m *mockInventory) ListAll(_ context.Context, columnOrder []string) (*models.Table, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.listColumns = columnOrder
	return m.table, nil
}
