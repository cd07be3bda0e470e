package leader

import "github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"

// Static возвращает закрытый канал с единственным сигналом перехода в status.
func Static(status domain.InstanceStatus) <-chan domain.StatusChange {
	ch := make(chan domain.StatusChange, 1)
	ch <- domain.StatusChange{Previous: domain.InstanceStatusUnknown, Current: status}
	close(ch)
	return ch
}
