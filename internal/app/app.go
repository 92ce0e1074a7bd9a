package app

import (
	"context"
	"sync"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/registry"
	"github.com/JrMarcco/connector/internal/service"
	"github.com/JrMarcco/connector/internal/upstream"
	wsc "github.com/JrMarcco/connector/internal/ws/conn"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var AppFxModule = fx.Module("app", fx.Invoke(initApp))

// app 串联 connector 的各个长期运行组件：
// 客户端 WebSocket 网关、到 transfer 的上行连接、用户状态同步以及 etcd 注册。
type app struct {
	wsSvr       connector.Server
	client      *upstream.Client
	syncer      *service.StatusSyncer
	registry    *registry.Registry
	connManager *wsc.ConnManager

	shutdowner fx.Shutdowner

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	logger *zap.Logger
}

func (app *app) Start(ctx context.Context) error {
	if err := app.wsSvr.Start(); err != nil {
		return err
	}

	if err := app.registry.Register(ctx); err != nil {
		return multierr.Append(err, app.wsSvr.GracefulShutdown())
	}

	// 上行连接断开后不做重连，直接退出进程。
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()

		err := app.client.Run(app.ctx)
		if app.ctx.Err() != nil {
			return
		}

		app.logger.Error("[connector-app] upstream link closed, shutting down", zap.Error(err))
		if shutdownErr := app.shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
			app.logger.Error("[connector-app] failed to shutdown", zap.Error(shutdownErr))
		}
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.syncer.Run(app.ctx)
	}()

	app.logger.Info("[connector-app] connector started", zap.String("registry_key", app.registry.Key()))
	return nil
}

func (app *app) Stop(ctx context.Context) error {
	var err error

	// 先从 etcd 注销，不再接收新的路由。
	err = multierr.Append(err, app.registry.Deregister(ctx))
	err = multierr.Append(err, app.wsSvr.GracefulShutdown())

	app.connManager.CloseAll()

	app.cancelFunc()
	app.wg.Wait()

	app.logger.Info("[connector-app] connector stopped")
	return err
}

type appFxParams struct {
	fx.In

	Server      connector.Server
	Client      *upstream.Client
	Syncer      *service.StatusSyncer
	Registry    *registry.Registry
	ConnManager *wsc.ConnManager

	Shutdowner fx.Shutdowner
	Logger     *zap.Logger
	Lifecycle  fx.Lifecycle
}

func initApp(params appFxParams) *app {
	ctx, cancel := context.WithCancel(context.Background())
	app := &app{
		wsSvr:       params.Server,
		client:      params.Client,
		syncer:      params.Syncer,
		registry:    params.Registry,
		connManager: params.ConnManager,

		shutdowner: params.Shutdowner,

		ctx:        ctx,
		cancelFunc: cancel,

		logger: params.Logger,
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: app.Start,
		OnStop:  app.Stop,
	})

	return app
}
