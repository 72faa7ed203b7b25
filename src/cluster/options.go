package cluster

import (
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Credentials authenticate against the admin database.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) credential() options.Credential {
	return options.Credential{
		AuthSource: AdminDatabase,
		Username:   c.Username,
		Password:   c.Password,
	}
}

// AdminOptions returns client options for an admin-authorized connection
// to every replica of the named replica set.
func AdminOptions(hosts []string, replicaSet string, creds Credentials) *options.ClientOptions {
	return options.Client().
		SetHosts(hosts).
		SetReplicaSet(replicaSet).
		SetAuth(creds.credential())
}

// FirstMemberOptions returns client options for a direct connection to a
// single host. Used before the replica set exists.
func FirstMemberOptions(host string, creds Credentials) *options.ClientOptions {
	return options.Client().
		SetHosts([]string{host}).
		SetDirect(true).
		SetAuth(creds.credential())
}
