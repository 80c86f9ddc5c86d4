package dynamodb

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"task-rbac/internal/domain"
)

type taskRecord struct {
	PK             string     `dynamodbav:"PK"`
	SK             string     `dynamodbav:"SK"`
	EntityType     string     `dynamodbav:"EntityType"`
	ID             string     `dynamodbav:"ID"`
	Title          string     `dynamodbav:"Title"`
	Description    string     `dynamodbav:"Description"`
	Status         string     `dynamodbav:"Status"`
	Priority       string     `dynamodbav:"Priority"`
	CreatedByID    string     `dynamodbav:"CreatedByID"`
	AssigneeID     string     `dynamodbav:"AssigneeID,omitempty"`
	OrganizationID string     `dynamodbav:"OrganizationID"`
	IsPublic       bool       `dynamodbav:"IsPublic"`
	Tags           []string   `dynamodbav:"Tags"`
	DueDate        *time.Time `dynamodbav:"DueDate,omitempty"`
	CompletedAt    *time.Time `dynamodbav:"CompletedAt,omitempty"`
	CreatedAt      time.Time  `dynamodbav:"CreatedAt"`
	UpdatedAt      time.Time  `dynamodbav:"UpdatedAt"`
	DeletedAt      *time.Time `dynamodbav:"DeletedAt,omitempty"`
}

func toTaskRecord(t domain.Task) taskRecord {
	return taskRecord{
		PK:             orgPK(t.OrganizationID),
		SK:             taskSK(t.ID),
		EntityType:     "TASK",
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		CreatedByID:    t.CreatedByID,
		AssigneeID:     t.AssigneeID,
		OrganizationID: t.OrganizationID,
		IsPublic:       t.IsPublic,
		Tags:           t.Tags,
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		DeletedAt:      t.DeletedAt,
	}
}

func (rec taskRecord) toTask() domain.Task {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Task{
		ID:             rec.ID,
		Title:          rec.Title,
		Description:    rec.Description,
		Status:         domain.TaskStatus(rec.Status),
		Priority:       domain.TaskPriority(rec.Priority),
		CreatedByID:    rec.CreatedByID,
		AssigneeID:     rec.AssigneeID,
		OrganizationID: rec.OrganizationID,
		IsPublic:       rec.IsPublic,
		Tags:           tags,
		DueDate:        rec.DueDate,
		CompletedAt:    rec.CompletedAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		DeletedAt:      rec.DeletedAt,
	}
}

// TaskRepository keeps tasks in their organization's partition, so a lookup
// always needs the organization.
type TaskRepository struct{ client *Client }

func NewTaskRepository(client *Client) *TaskRepository {
	return &TaskRepository{client: client}
}

func (r *TaskRepository) Create(ctx context.Context, task domain.Task) error {
	return r.client.putNew(ctx, "DynamoDB.PutTask", toTaskRecord(task))
}

func (r *TaskRepository) Update(ctx context.Context, task domain.Task) error {
	return r.client.replace(ctx, "DynamoDB.UpdateTask", toTaskRecord(task))
}

func (r *TaskRepository) GetByID(ctx context.Context, orgID, taskID string) (domain.Task, error) {
	var rec taskRecord
	if err := r.client.get(ctx, "DynamoDB.GetTask", orgPK(orgID), taskSK(taskID), &rec); err != nil {
		return domain.Task{}, err
	}
	return rec.toTask(), nil
}

// List applies scope then filter and returns newest tasks first.
func (r *TaskRepository) List(ctx context.Context, scope domain.TaskScope, filter domain.TaskFilter) ([]domain.Task, error) {
	items, err := r.client.queryPrefix(ctx, "DynamoDB.QueryTasks", orgPK(scope.OrganizationID), "TASK#")
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		var rec taskRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, err
		}
		task := rec.toTask()
		if scope.Allows(task) && filter.Matches(task) {
			tasks = append(tasks, task)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}
