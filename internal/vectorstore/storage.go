package vectorstore

import "recall/internal/domain"

// Storage persists one fitted index's vectors and supports similarity search.
type Storage = domain.VectorStore

// Factory creates an empty Storage for a freshly fitted index.
type Factory func() Storage
