// Package constraint реализует dry-run ограничение продвижения версии
// между окружениями.
//
// Ограничение держит версию в PENDING, пока с момента создания состояния
// не пройдёт WaitTime, затем выдаёт PASS (или FAIL при Fail=true).
// С Alternate=true статус после ожидания чередуется каждые
// AlternateInterval:
//
//	elapsed <  waitTime                       → PENDING
//	(elapsed - waitTime) / interval чётное    → PASS (FAIL при Fail)
//	(elapsed - waitTime) / interval нечётное  → FAIL (PASS при Fail)
//
// Состояние переоценивается при каждом вызове, поэтому PASS может смениться
// на FAIL. Каждая оценка сохраняется: при смене статуса вместе с атрибутами,
// иначе обновляется только judgedAt.
package constraint
