package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"explore-api/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const postCacheTime = 7 * 24 * time.Hour

const publishedListKey = "posts:published"

func postKey(id uuid.UUID) string {
	return "post:" + id.String()
}

// PostCache is a read-through cache over the public post read endpoints.
// Mutations must call Invalidate so stale entries never outlive a write.
type PostCache struct {
	client *redis.Client
}

func NewPostCache(client *redis.Client) *PostCache {
	return &PostCache{client: client}
}

// GetPublished returns the cached published list. ok is false on a miss.
func (c *PostCache) GetPublished(ctx context.Context) (posts []models.Post, ok bool, err error) {
	cachedData, err := c.client.Get(ctx, publishedListKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error fetching posts from Redis cache: %w", err)
	}

	if err := json.Unmarshal([]byte(cachedData), &posts); err != nil {
		return nil, false, fmt.Errorf("error unmarshalling cached posts data: %w", err)
	}
	return posts, true, nil
}

func (c *PostCache) SetPublished(ctx context.Context, posts []models.Post) {
	jsonData, err := json.Marshal(posts)
	if err != nil {
		return
	}
	c.client.Set(ctx, publishedListKey, jsonData, postCacheTime)
}

// GetPost returns a cached published post. ok is false on a miss.
func (c *PostCache) GetPost(ctx context.Context, id uuid.UUID) (post *models.Post, ok bool, err error) {
	cachedData, err := c.client.Get(ctx, postKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error fetching post %s from Redis cache: %w", id, err)
	}

	post = &models.Post{}
	if err := json.Unmarshal([]byte(cachedData), post); err != nil {
		return nil, false, fmt.Errorf("error unmarshalling cached post data: %w", err)
	}
	return post, true, nil
}

func (c *PostCache) SetPost(ctx context.Context, post *models.Post) {
	jsonData, err := json.Marshal(post)
	if err != nil {
		return
	}
	c.client.Set(ctx, postKey(post.ID), jsonData, postCacheTime)
}

// Invalidate drops the published list and the entry for id.
func (c *PostCache) Invalidate(ctx context.Context, id uuid.UUID) {
	c.client.Del(ctx, publishedListKey, postKey(id))
}
