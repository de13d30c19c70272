package bootstrap

import (
	"context"

	"cloud.google.com/go/firestore"
)

// InitFirestore opens databaseID in projectID, or the default database when
// databaseID is empty. The client honours FIRESTORE_EMULATOR_HOST.
func InitFirestore(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	return firestore.NewClientWithDatabase(ctx, projectID, databaseID)
}
