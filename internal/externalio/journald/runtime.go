package journald

import "gelfsend/internal/ingest"

func (mod *InModule) SourceName() string {
	return mod.name
}

func (mod *InModule) Storage() *ingest.MetricStorage {
	return mod.metrics
}

func (mod *InModule) SetStorage(storage *ingest.MetricStorage) {
	mod.metrics = storage
}

// Nothing is held open before Run starts journalctl (err always nil)
func (mod *InModule) Close() (err error) {
	return
}
