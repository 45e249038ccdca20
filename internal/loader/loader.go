package loader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"

	"fleet/internal/apperr"
	"fleet/internal/models"
	"fleet/internal/validate"
)

// Source: часть слоя данных, которую батчат лоадеры.
type Source interface {
	FindUserByEmail(ctx context.Context, email string, includeDevices bool) (*models.User, error)
	FindDevicesByEmail(ctx context.Context, email string) ([]*models.Device, error)
	FindDeviceByID(ctx context.Context, id int) (*models.Device, error)
}

const (
	batchWait     = 2 * time.Millisecond
	fanOutLimit   = 8
	batchCapacity = 100
)

// Loaders живут один запрос: кэш не переживает его и не инвалидируется.
type Loaders struct {
	Users   *dataloader.Loader[string, *models.User]
	Devices *dataloader.Loader[string, []*models.Device]
}

func New(src Source) *Loaders {
	return &Loaders{
		Users: dataloader.NewBatchedLoader(usersBatch(src),
			dataloader.WithWait[string, *models.User](batchWait),
			dataloader.WithBatchCapacity[string, *models.User](batchCapacity)),
		Devices: dataloader.NewBatchedLoader(devicesBatch(src),
			dataloader.WithWait[string, []*models.Device](batchWait),
			dataloader.WithBatchCapacity[string, []*models.Device](batchCapacity)),
	}
}

// User грузит пользователя без устройств; nil, если его нет.
func (l *Loaders) User(ctx context.Context, email string) dataloader.Thunk[*models.User] {
	return l.Users.Load(ctx, email)
}

func (l *Loaders) DevicesByEmail(ctx context.Context, email string) dataloader.Thunk[[]*models.Device] {
	return l.Devices.Load(ctx, email)
}

// DeviceByID разделяет кэш с DevicesByEmail: ключ это десятичный id.
func (l *Loaders) DeviceByID(ctx context.Context, id int) dataloader.Thunk[*models.Device] {
	thunk := l.Devices.Load(ctx, strconv.Itoa(id))
	return func() (*models.Device, error) {
		devices, err := thunk()
		if err != nil || len(devices) == 0 {
			return nil, err
		}
		return devices[0], nil
	}
}

func usersBatch(src Source) dataloader.BatchFunc[string, *models.User] {
	return func(ctx context.Context, emails []string) []*dataloader.Result[*models.User] {
		return fanOut(ctx, emails, func(ctx context.Context, email string) (*models.User, error) {
			return src.FindUserByEmail(ctx, email, false)
		})
	}
}

func devicesBatch(src Source) dataloader.BatchFunc[string, []*models.Device] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[[]*models.Device] {
		return fanOut(ctx, keys, func(ctx context.Context, key string) ([]*models.Device, error) {
			if validate.IsEmail(key) {
				return src.FindDevicesByEmail(ctx, key)
			}
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, apperr.InvalidInput(fmt.Sprintf("Not a valid email address or device ID: %s", key))
			}
			d, err := src.FindDeviceByID(ctx, id)
			if err != nil || d == nil {
				return []*models.Device{}, err
			}
			return []*models.Device{d}, nil
		})
	}
}

// fanOut вызывает fetch по каждому ключу параллельно; результаты в порядке ключей.
func fanOut[V any](ctx context.Context, keys []string, fetch func(context.Context, string) (V, error)) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, key := range keys {
		g.Go(func() error {
			v, err := fetch(ctx, key)
			results[i] = &dataloader.Result[V]{Data: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
