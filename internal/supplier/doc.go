// Package supplier вычисляет версии dry-run артефактов на стороне потребителя.
//
// Версии не хранятся: они выводятся из времени. Базовое время — момент
// создания Supplier, округлённый вниз до publishInterval; каждая следующая
// версия — base + k*publishInterval. Версия — время в формате RFC 3339 (UTC).
//
//	s, _ := supplier.New(5*time.Minute, clock.System{})
//	latest := s.LatestArtifacts("my-artifact", 10)
//
// Метаданные сборки и коммита синтетические, коммит — первые 7 символов
// sha1 от версии.
package supplier
