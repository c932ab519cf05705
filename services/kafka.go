package services

import (
	"encoding/json"
	"log"
	"webauthn_ms/config"
	"webauthn_ms/dtos/request"

	"github.com/IBM/sarama"
)

// SendStudentAuthenticatedEvent notifies the student portal that a student
// passed a passkey ceremony so it can create or refresh the profile.
func SendStudentAuthenticatedEvent(event *request.StudentAuthenticatedEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	producer, err := sarama.NewSyncProducer(config.Conf.Application.Kafka.Brokers, nil)
	if err != nil {
		log.Println("Failed to create sync producer:", err)
		return err
	}
	defer producer.Close()

	msg := &sarama.ProducerMessage{
		Topic: config.Conf.Application.Kafka.ProfileSyncTopic,
		Key:   sarama.StringEncoder(event.Username),
		Value: sarama.StringEncoder(eventData),
	}
	partition, offset, err := producer.SendMessage(msg)
	if err != nil {
		log.Println("Failed to send student authenticated event:", err)
		return err
	}
	log.Printf("Successfully sent student authenticated event to partition %d at offset %d\n", partition, offset)
	return nil
}
