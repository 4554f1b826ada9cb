package config

type RouteConfig interface {
	GetHomeRoute() string
	GetLoginRoute() string
}

type Routes struct {
	HomeRoute  string `env:"TALLY_HOME_ROUTE,default=/settings"`
	LoginRoute string `env:"TALLY_LOGIN_ROUTE,default=/login"`
}

var _ RouteConfig = Routes{}

func (r Routes) GetHomeRoute() string {
	return r.HomeRoute
}

func (r Routes) GetLoginRoute() string {
	return r.LoginRoute
}
