package services

// ServiceContainer holds all service facades needed by the transport layer.
type ServiceContainer struct {
	Connection  ConnectionSvcFacade
	Sync        SyncSvcFacade
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	Budget      BudgetSvcFacade
	Evaluator   BudgetEvaluatorSvc
	Reporting   ReportingSvcFacade
}
