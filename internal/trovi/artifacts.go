package trovi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chameleoncloud/trovi/internal/urn"
)

// DefaultSortBy is the artifact list ordering used when none is given.
const DefaultSortBy = "updated_at"

// ListArtifacts returns the artifacts visible to the client.
func (c *Client) ListArtifacts(ctx context.Context, sortBy string) ([]Artifact, error) {
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	data, err := c.get(ctx, "/artifacts/", url.Values{"sort_by": {sortBy}})
	if err != nil {
		return nil, err
	}
	return field[[]Artifact](data, "artifacts")
}

// CreateArtifact creates an artifact. force skips server-side checks that
// only admins may bypass.
func (c *Client) CreateArtifact(ctx context.Context, artifact Artifact, force bool) (Artifact, error) {
	data, err := c.post(ctx, "/artifacts/", forceQuery(force), artifact)
	if err != nil {
		return nil, err
	}
	return decode[Artifact](data)
}

// GetArtifact fetches one artifact. sharingKey grants access to private
// artifacts and may be empty.
func (c *Client) GetArtifact(ctx context.Context, id, sharingKey string) (Artifact, error) {
	query := url.Values{}
	if sharingKey != "" {
		query.Set("sharing_key", sharingKey)
	}
	data, err := c.get(ctx, artifactPath(id), query)
	if err != nil {
		return nil, err
	}
	return decode[Artifact](data)
}

// PatchArtifact applies JSON Patch operations to an artifact server-side.
func (c *Client) PatchArtifact(ctx context.Context, id string, patches []Patch, force bool) (Artifact, error) {
	body := map[string]any{"patch": patches}
	data, err := c.patch(ctx, artifactPath(id), forceQuery(force), body)
	if err != nil {
		return nil, err
	}
	return decode[Artifact](data)
}

// LinkChameleonProjectPatch returns the operation linking chargeCode to the
// artifact: a replace of the existing Chameleon project entry, or an append
// when the artifact has none.
func LinkChameleonProjectPatch(artifact Artifact, chargeCode string) (Patch, error) {
	newURN := urn.ChameleonProject(chargeCode)

	linked, err := linkedProjectEntries(artifact)
	if err != nil {
		return Patch{}, err
	}
	for i, project := range linked {
		parsed, err := urn.ParseProject(project)
		if err != nil {
			return Patch{}, fmt.Errorf("linked project %d: %w", i, err)
		}
		if parsed.Provider == urn.ProviderChameleon {
			return ReplaceOp(IndexPath("linked_projects", i), newURN), nil
		}
	}
	return AddOp(AppendPath("linked_projects"), newURN), nil
}

// linkedProjectEntries returns linked_projects with the server's indices
// intact. Any entry that is not a string is an error.
func linkedProjectEntries(artifact Artifact) ([]string, error) {
	switch v := artifact["linked_projects"].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("linked project %d: %w: %v", i, urn.ErrMalformedURN, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("linked_projects: unexpected %T", v)
	}
}

// SetLinkedChameleonProject points the artifact's Chameleon project link at
// chargeCode. It fetches the artifact, then sends a single patch.
func (c *Client) SetLinkedChameleonProject(ctx context.Context, id, chargeCode string) (Artifact, error) {
	artifact, err := c.GetArtifact(ctx, id, "")
	if err != nil {
		return nil, err
	}

	op, err := LinkChameleonProjectPatch(artifact, chargeCode)
	if err != nil {
		return nil, err
	}
	patches := []Patch{op}
	if _, err := ApplyPatches(artifact, patches); err != nil {
		return nil, err
	}

	return c.PatchArtifact(ctx, id, patches, false)
}

func forceQuery(force bool) url.Values {
	query := url.Values{}
	if force {
		query.Set("force", forceValue)
	}
	return query
}
