package cmd

import (
	"github.com/marcus/mask/internal/arcgis"
	"github.com/marcus/mask/internal/config"
	"github.com/marcus/mask/internal/localstore"
	masksync "github.com/marcus/mask/internal/sync"
)

// openService connects the configured store and wraps it in the sync
// service. The returned func releases the store.
func openService(c config.Config) (*masksync.Service, func() error, error) {
	scheme, path := c.StoreBackend()
	if scheme == config.StoreSQLite {
		store, err := localstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return masksync.New(store, c.Map.WKID, c.Timeout), store.Close, nil
	}
	client := arcgis.New(c.LayerURL, c.Token, c.Timeout)
	return masksync.New(client, c.Map.WKID, c.Timeout), func() error { return nil }, nil
}
