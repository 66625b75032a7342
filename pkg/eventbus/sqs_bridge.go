package eventbus

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	applog "github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/rs/zerolog"
)

// SQSClient define a interface necessária para a ponte (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSBridge consome uma fila SQS e republica cada mensagem
// ({source, detailType, detail}) no barramento.
type SQSBridge struct {
	client     SQSClient
	queueURL   string
	broker     Broker
	logger     zerolog.Logger
	retryDelay time.Duration
}

func NewSQSBridge(client SQSClient, queueURL string, broker Broker, logger zerolog.Logger) *SQSBridge {
	return &SQSBridge{
		client:     client,
		queueURL:   queueURL,
		broker:     broker,
		logger:     applog.Component(logger, "SQSBridge"),
		retryDelay: 5 * time.Second,
	}
}

// Start consome a fila até o ctx ser cancelado (bloqueante).
func (s *SQSBridge) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Ponte desativada.")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("Consumindo fila SQS para o barramento")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Parando consumo SQS")
			return
		default:
			out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(s.queueURL),
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20, // Long polling
			})

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("Erro no SQS. Retentando...")
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.retryDelay):
				}
				continue
			}

			for _, msg := range out.Messages {
				s.handle(ctx, msg)
			}
		}
	}
}

// handle publica a mensagem e a remove da fila. Mensagens malformadas também
// são removidas; falhas de publicação ficam para nova entrega.
func (s *SQSBridge) handle(ctx context.Context, msg types.Message) {
	log := s.logger.With().Str("message_id", aws.ToString(msg.MessageId)).Logger()

	entry, err := DecodeEntry([]byte(aws.ToString(msg.Body)))
	if err != nil {
		log.Warn().Err(err).Msg("Mensagem descartada")
		s.delete(ctx, msg)
		return
	}

	out, err := s.broker.Publish(ctx, []Entry{entry})
	if err != nil {
		log.Error().Err(err).Msg("Falha ao publicar mensagem, aguardando nova entrega")
		return
	}
	if out.FailedEntryCount > 0 {
		log.Warn().Str("error_code", out.Entries[0].ErrorCode).Msg("Entrada rejeitada pelo barramento")
	}

	s.delete(ctx, msg)
}

func (s *SQSBridge) delete(ctx context.Context, msg types.Message) {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Falha ao remover mensagem da fila")
	}
}
