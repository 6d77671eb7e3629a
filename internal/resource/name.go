// Package resource handles Firestore document resource names of the form
// projects/{project}/databases/{database}/documents/{path}.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcncl/fsvalue/internal/models"
)

// DefaultDatabase is the database ID used when none is configured.
const DefaultDatabase = "(default)"

// idLength matches the length of Firestore's generated document IDs.
const idLength = 20

var (
	ErrInvalidName = errors.New("invalid resource name")
	ErrInvalidPath = errors.New("invalid document path")
	ErrNoProject   = errors.New("no project configured")
)

// ID returns the document identifier of a resource name: everything after the last '/'.
func ID(name string) string {
	return name[strings.LastIndex(name, "/")+1:]
}

// Name is a parsed document resource name.
type Name struct {
	ProjectID  string
	DatabaseID string
	Path       string // relative document path, e.g. "users/alice"
}

// String renders the fully-qualified resource name.
func (n Name) String() string {
	root := fmt.Sprintf("projects/%s/databases/%s/documents", n.ProjectID, n.DatabaseID)
	if n.Path == "" {
		return root
	}
	return root + "/" + n.Path
}

// ID returns the final path segment.
func (n Name) ID() string {
	return ID(n.Path)
}

// Parse splits a fully-qualified resource name into its parts.
func Parse(name string) (Name, error) {
	parts := strings.Split(name, "/")
	if len(parts) < 5 || parts[0] != "projects" || parts[2] != "databases" || parts[4] != "documents" {
		return Name{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if parts[1] == "" || parts[3] == "" {
		return Name{}, fmt.Errorf("%w: %q: empty project or database", ErrInvalidName, name)
	}
	path := strings.Join(parts[5:], "/")
	if path != "" {
		if err := checkSegments(parts[5:]); err != nil {
			return Name{}, fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
		}
	}
	return Name{ProjectID: parts[1], DatabaseID: parts[3], Path: path}, nil
}

func checkSegments(segments []string) error {
	for i, s := range segments {
		if s == "" {
			return fmt.Errorf("empty segment at position %d", i)
		}
	}
	return nil
}

// Client resolves document paths against one project and database.
// It satisfies models.Resolver.
type Client struct {
	ProjectID  string
	DatabaseID string
}

// NewClient creates a Client, defaulting the database to "(default)".
func NewClient(projectID, databaseID string) *Client {
	if databaseID == "" {
		databaseID = DefaultDatabase
	}
	return &Client{ProjectID: projectID, DatabaseID: databaseID}
}

// Root returns the documents root of the client's database.
func (c *Client) Root() string {
	return Name{ProjectID: c.ProjectID, DatabaseID: c.database()}.String()
}

func (c *Client) database() string {
	if c.DatabaseID == "" {
		return DefaultDatabase
	}
	return c.DatabaseID
}

// ResourceName resolves a relative document path into a fully-qualified resource name.
// Names that are already fully qualified are accepted when they point into the
// client's own database.
func (c *Client) ResourceName(path string) (string, error) {
	if c.ProjectID == "" {
		return "", ErrNoProject
	}
	if strings.HasPrefix(path, "projects/") {
		n, err := Parse(path)
		if err != nil {
			return "", err
		}
		if n.ProjectID != c.ProjectID || n.DatabaseID != c.database() {
			return "", fmt.Errorf("%w: %q belongs to another database", ErrInvalidPath, path)
		}
		if n.Path == "" || strings.Count(n.Path, "/")%2 == 0 {
			return "", fmt.Errorf("%w: %q does not name a document", ErrInvalidPath, path)
		}
		return path, nil
	}

	path = strings.Trim(path, "/")
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segments := strings.Split(path, "/")
	if err := checkSegments(segments); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidPath, path, err)
	}
	if len(segments)%2 != 0 {
		return "", fmt.Errorf("%w: %q names a collection, not a document", ErrInvalidPath, path)
	}
	return Name{ProjectID: c.ProjectID, DatabaseID: c.database(), Path: path}.String(), nil
}

// Ref returns a live reference to path bound to this client.
func (c *Client) Ref(path string) models.DocumentRef {
	return models.DocumentRef{Path: path, Resolver: c}
}

// NewDocumentName returns a resource name for a new document with a generated ID
// inside the given collection path.
func (c *Client) NewDocumentName(collection string) (string, error) {
	collection = strings.Trim(collection, "/")
	if collection == "" {
		return "", fmt.Errorf("%w: empty collection", ErrInvalidPath)
	}
	return c.ResourceName(collection + "/" + NewID())
}

// idAlphabet is the character set of Firestore auto IDs.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewID generates a random 20-character alphanumeric document ID. Random bytes come
// from version 4 UUIDs; the fixed version and variant bytes are skipped and bytes at or
// above the largest multiple of len(idAlphabet) are rejected so every character is
// equally likely.
func NewID() string {
	const limit = 256 - 256%len(idAlphabet)
	id := make([]byte, 0, idLength)
	for len(id) < idLength {
		u := uuid.New()
		for i, b := range u {
			if i == 6 || i == 8 || int(b) >= limit {
				continue
			}
			id = append(id, idAlphabet[int(b)%len(idAlphabet)])
			if len(id) == idLength {
				break
			}
		}
	}
	return string(id)
}
