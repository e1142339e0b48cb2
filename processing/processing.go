package processing

import (
	"context"
	"log"
	"scrapbook/models"
	"scrapbook/storage"
	"time"
)

const batchSize = 20

type processingTask interface {
	getName() string
	shouldHandle(*models.Album) bool
	process(*models.Album, storage.StorageAPI) error
}

var (
	tasks = map[string]processingTask{}
	// Albums a task failed for, they are not retried until restart
	failed = map[string]map[uint64]bool{}
)

func registerTask(t processingTask) {
	tasks[t.getName()] = t
	failed[t.getName()] = map[uint64]bool{}
}

func Init() {
	registerTask(&coverThumb{})
}

// processPending runs all tasks on the albums that need them and returns how many succeeded
func processPending(store storage.StorageAPI) (done int) {
	skip := []uint64{}
	for id := range failed[coverThumbTask] {
		skip = append(skip, id)
	}
	albums, err := models.AlbumsMissingThumbs(batchSize, skip)
	if err != nil {
		log.Printf("processPending error: %v", err)
		return
	}
	for i := range albums {
		album := &albums[i]
		for taskName, task := range tasks {
			if failed[taskName][album.ID] || !task.shouldHandle(album) {
				continue
			}
			start := time.Now()
			if err = task.process(album, store); err != nil {
				failed[taskName][album.ID] = true
				log.Printf("Task %s, album: %d, error: %v", taskName, album.ID, err)
				continue
			}
			done++
			log.Printf("Task %s, album: %d, time: %v", taskName, album.ID, time.Since(start).Milliseconds())
		}
	}
	return
}

// StartProcessing works through pending albums every interval until ctx is done
func StartProcessing(ctx context.Context, store storage.StorageAPI, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		// Keep going while there is work
		for processPending(store) > 0 {
			if ctx.Err() != nil {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
