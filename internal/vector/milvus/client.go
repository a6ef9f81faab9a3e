package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/vector"
	"github.com/qcbot/backend/pkg/logger"
)

// Client stores hierarchy entity embeddings in a Milvus collection so the
// navigation corpus survives restarts and can be shared across instances.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

func NewClient(endpoint, collectionName string) (*Client, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

// Reset drops any existing collection and recreates it with the given
// embedding dimension. The corpus is rebuilt on every startup because the
// source dataset may have changed.
func (m *Client) Reset(ctx context.Context, dim int) error {
	m.vectorDim = dim

	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if has {
		if err := m.client.DropCollection(ctx, m.collectionName); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Plant hierarchy entity embeddings",
		Fields: []*entity.Field{
			{
				Name:       "entry_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", dim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "2048",
				},
			},
			{
				Name:     "level",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "plant_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "section_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "item_code",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.IP, 1024)
	if err != nil {
		return fmt.Errorf("failed to build index params: %w", err)
	}
	if err := m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

func (m *Client) Upsert(ctx context.Context, entries []vector.Entry, vectors [][]float32) error {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) != len(vectors) {
		return fmt.Errorf("entries and vectors length mismatch: %d != %d", len(entries), len(vectors))
	}

	ids := make([]string, len(entries))
	texts := make([]string, len(entries))
	levels := make([]string, len(entries))
	plantIDs := make([]string, len(entries))
	sectionIDs := make([]string, len(entries))
	itemCodes := make([]string, len(entries))
	names := make([]string, len(entries))

	for i, e := range entries {
		ids[i] = e.ID
		texts[i] = e.Text
		levels[i] = e.Level
		plantIDs[i] = e.PlantID
		sectionIDs[i] = e.SectionID
		itemCodes[i] = e.ItemCode
		names[i] = e.Name
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("entry_id", ids),
		entity.NewColumnFloatVector("embedding", m.vectorDim, vectors),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("level", levels),
		entity.NewColumnVarChar("plant_id", plantIDs),
		entity.NewColumnVarChar("section_id", sectionIDs),
		entity.NewColumnVarChar("item_code", itemCodes),
		entity.NewColumnVarChar("name", names),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entries: %w", err)
	}

	if err := m.client.Flush(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Entries inserted into vector DB", zap.Int("count", len(entries)))

	return nil
}

func (m *Client) Search(ctx context.Context, query []float32, topK int) ([]vector.Match, error) {
	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"entry_id", "text", "level", "plant_id", "section_id", "item_code", "name"},
		[]entity.Vector{entity.FloatVector(query)},
		"embedding",
		entity.IP,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]vector.Match, 0)
	for _, sr := range searchResult {
		idCol := sr.Fields.GetColumn("entry_id")
		textCol := sr.Fields.GetColumn("text")
		levelCol := sr.Fields.GetColumn("level")
		plantCol := sr.Fields.GetColumn("plant_id")
		sectionCol := sr.Fields.GetColumn("section_id")
		itemCol := sr.Fields.GetColumn("item_code")
		nameCol := sr.Fields.GetColumn("name")

		for i := 0; i < sr.ResultCount; i++ {
			id, _ := idCol.Get(i)
			text, _ := textCol.Get(i)
			level, _ := levelCol.Get(i)
			plantID, _ := plantCol.Get(i)
			sectionID, _ := sectionCol.Get(i)
			itemCode, _ := itemCol.Get(i)
			name, _ := nameCol.Get(i)

			matches = append(matches, vector.Match{
				Entry: vector.Entry{
					ID:        id.(string),
					Text:      text.(string),
					Level:     level.(string),
					PlantID:   plantID.(string),
					SectionID: sectionID.(string),
					ItemCode:  itemCode.(string),
					Name:      name.(string),
				},
				Score: sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(matches)),
	)

	return matches, nil
}
