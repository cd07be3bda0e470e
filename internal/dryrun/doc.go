// Package dryrun реализует монитор публикации dry-run артефактов.
//
// Monitor отвечает на вопрос "пора ли публиковать новую версию партиции":
//
//	due ⇔ now - lastPublishTimestamp(partition) >= publishInterval
//
// Неизвестная партиция читается как 0 и сразу due.
//
// Коммит: сначала событие, затем запись timestamp. Падение между шагами
// даёт повторное событие на следующем due-тике, но не пропуск (at-least-once).
// Если событие не отправилось, timestamp всё равно записывается: партиция
// не застревает, а потерянная версия будет выпущена через publishInterval.
package dryrun
