package knowledge

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch перезагружает справочники из dir при изменении файлов, пока не отменён ctx
func (s *Store) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var lastEvent time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".json" {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if time.Since(lastEvent) < 2*time.Second {
						continue
					}
					lastEvent = time.Now()

					log.Printf("Справочник изменён: %s", event.Name)
					if err := s.Load(dir); err != nil {
						log.Printf("Ошибка перезагрузки справочников: %v", err)
						continue
					}
					p, r, e := s.Count()
					log.Printf("Справочники перезагружены: %d продуктов, %d рецептов, %d упражнений", p, r, e)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Ошибка наблюдателя: %v", err)
			}
		}
	}()

	log.Printf("Наблюдение за %s запущено", dir)
	return nil
}
